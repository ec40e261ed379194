package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pkordes/dayplanner/internal/domain"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// GeminiConfig configures a GeminiClient. Zero values fall back to defaults.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries uint64
	Backoff    time.Duration // first retry delay, doubled on each attempt
}

// GeminiClient calls the generateContent endpoint and collects the function
// calls of the first candidate.
type GeminiClient struct {
	cfg    GeminiConfig
	tools  []FunctionDeclaration
	logger *slog.Logger
}

// compile-time check: GeminiClient must satisfy Client.
var _ Client = (*GeminiClient)(nil)

// NewGeminiClient validates cfg and loads the function declarations.
func NewGeminiClient(cfg GeminiConfig, logger *slog.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm.NewGeminiClient: missing API key")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm.NewGeminiClient: missing model")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	tools, err := Declarations()
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cfg: cfg, tools: tools, logger: logger}, nil
}

// Model returns the configured model name.
func (g *GeminiClient) Model() string {
	return g.cfg.Model
}

// ---- wire types ------------------------------------------------------------

type part struct {
	Text         string        `json:"text,omitempty"`
	FunctionCall *functionCall `json:"functionCall,omitempty"`
}

type functionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
	Tools             []tool    `json:"tools"`
	ToolConfig        struct {
		FunctionCallingConfig struct {
			Mode string `json:"mode"`
		} `json:"functionCallingConfig"`
	} `json:"toolConfig"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// ---- Generate --------------------------------------------------------------

// Generate sends prompt to the model. Rate limiting, server errors and
// transport failures are retried with exponential backoff; any other non-200
// response fails at once. Upstream failures wrap domain.ErrUpstream.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) ([]domain.Record, error) {
	body, err := json.Marshal(g.request(prompt))
	if err != nil {
		return nil, fmt.Errorf("llm.GeminiClient.Generate: %w", err)
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.cfg.BaseURL, g.cfg.Model)

	var raw []byte
	attempt := 0
	backoff := retry.WithMaxRetries(g.cfg.MaxRetries, retry.NewExponential(g.cfg.Backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		b, err := g.post(ctx, url, body)
		if err != nil {
			if !isContextErr(err) {
				g.logger.Warn("gemini request failed", "attempt", attempt, "error", err)
			}
			return err
		}
		raw = b
		return nil
	})
	if err != nil {
		if isContextErr(err) {
			return nil, fmt.Errorf("llm.GeminiClient.Generate: %w", err)
		}
		return nil, fmt.Errorf("llm.GeminiClient.Generate: %w: %w", domain.ErrUpstream, err)
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("llm.GeminiClient.Generate: %w: decode response: %w", domain.ErrUpstream, err)
	}
	return recordsFrom(resp), nil
}

func (g *GeminiClient) request(prompt string) generateRequest {
	var req generateRequest
	req.SystemInstruction = content{Parts: []part{{Text: systemInstruction}}}
	req.Contents = []content{{Role: "user", Parts: []part{{Text: prompt}}}}
	req.Tools = []tool{{FunctionDeclarations: g.tools}}
	req.ToolConfig.FunctionCallingConfig.Mode = "ANY"
	req.GenerationConfig.Temperature = 0.2
	return req
}

// retryableStatus marks a response status worth retrying.
type retryableStatus struct {
	status int
	body   string
}

func (e *retryableStatus) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.body)
}

// post performs one attempt. Errors worth retrying are wrapped with
// retry.RetryableError.
func (g *GeminiClient) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.cfg.APIKey)

	resp, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return raw, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, retry.RetryableError(&retryableStatus{status: resp.StatusCode, body: truncate(raw)})
	default:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw))
	}
}

// recordsFrom collects the function calls of the first candidate in order.
func recordsFrom(resp generateResponse) []domain.Record {
	records := []domain.Record{}
	if len(resp.Candidates) == 0 {
		return records
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.FunctionCall == nil {
			continue
		}
		records = append(records, domain.Record{
			Kind: domain.RecordKind(p.FunctionCall.Name),
			Args: p.FunctionCall.Args,
		})
	}
	return records
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func truncate(b []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
