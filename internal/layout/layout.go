// Package layout computes where each timeline entry goes on a paginated
// document. It only does geometry: the result is a list of plain
// instructions, and drawing them is left to a renderer.
package layout

import (
	"log/slog"
	"math"
	"strings"

	"github.com/pkordes/dayplanner/internal/domain"
)

// Kind identifies what an Instruction draws.
type Kind string

const (
	KindPage   Kind = "page"   // start a new page; every list begins with one
	KindText   Kind = "text"   // Payload.Lines, top-left at (X, Y)
	KindCircle Kind = "circle" // centre (X, Y), Payload.Radius
	KindLine   Kind = "line"   // from (X, Y) to (Payload.X2, Payload.Y2)
	KindImage  Kind = "image"  // top-left at (X, Y), Payload.Width x Payload.Height
)

// HeaderEntry is the Payload.Entry value of instructions that belong to the
// document header rather than to a timeline entry.
const HeaderEntry = -1

// Instruction is one drawing step. Coordinates are in points from the top-left
// corner of the current page.
type Instruction struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Kind    Kind    `json:"kind"`
	Payload Payload `json:"payload"`
}

// Payload carries the kind-specific fields of an Instruction.
type Payload struct {
	Lines      []string `json:"lines,omitempty"`
	FontSize   float64  `json:"fontSize,omitempty"`
	LineHeight float64  `json:"lineHeight,omitempty"` // baseline-to-baseline distance
	Bold       bool     `json:"bold,omitempty"`
	Radius     float64  `json:"radius,omitempty"`
	Filled     bool     `json:"filled,omitempty"`
	X2         float64  `json:"x2,omitempty"`
	Y2         float64  `json:"y2,omitempty"`
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	Entry      int      `json:"entry"` // index into the laid out entries, or HeaderEntry
}

// Style holds the fixed typographic metrics used for height estimation.
type Style struct {
	PageWidth  float64
	TitleSize  float64 // stop names and the document title use this, bold
	BodySize   float64
	LineHeight float64 // multiple of the font size
	CharWidth  float64 // average glyph advance as a multiple of the font size
	DotRadius  float64
	Gutter     float64 // distance from the margin to the text column
	EntryGap   float64 // vertical space after each entry
	ConnectGap float64 // space between a connector end and the next dot
	MapHeight  float64 // maximum height of the header image
}

// A4 portrait in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// DefaultStyle returns Helvetica-like metrics on an A4 page.
func DefaultStyle() Style {
	return Style{
		PageWidth:  A4Width,
		TitleSize:  13,
		BodySize:   10,
		LineHeight: 1.35,
		CharWidth:  0.5,
		DotRadius:  4,
		Gutter:     24,
		EntryGap:   14,
		ConnectGap: 2,
		MapHeight:  300,
	}
}

// Header is the optional content placed before the first entry.
// ImageWidth and ImageHeight are the pixel size of the map snapshot; zero
// means there is no image.
type Header struct {
	Title       string
	ImageWidth  int
	ImageHeight int
}

// Engine lays out timeline entries. It holds no per-call state and is safe
// for concurrent use.
type Engine struct {
	style  Style
	logger *slog.Logger
}

// NewEngine returns an Engine using style. A nil logger means slog.Default().
func NewEngine(style Style, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{style: style, logger: logger}
}

// Layout places entries on pages of the given height with the given margin on
// every side. The output depends only on the arguments.
func (e *Engine) Layout(entries []domain.TimelineEntry, pageHeight, margin float64) []Instruction {
	return e.LayoutDocument(Header{}, entries, pageHeight, margin)
}

// LayoutDocument is Layout with a header (title and map image) on the first
// page.
//
// Each block is measured before it is placed. If it would cross the bottom
// margin and the page already holds something, a page instruction is emitted
// and the cursor returns to the top margin. A block taller than a whole page
// is placed anyway and overflows. When the page has no usable height every
// entry gets its own page.
func (e *Engine) LayoutDocument(h Header, entries []domain.TimelineEntry, pageHeight, margin float64) []Instruction {
	p := placer{
		style:      e.style,
		margin:     margin,
		bottom:     pageHeight - margin,
		degenerate: pageHeight-2*margin <= 0,
	}
	if p.degenerate {
		e.logger.Warn("layout: page has no usable height, placing one entry per page",
			"page_height", pageHeight,
			"margin", margin,
			"entries", len(entries),
		)
	}

	p.newPage()
	p.header(h)
	for i, entry := range entries {
		p.entry(i, entry)
	}
	return p.out
}

// placer is the state of one Layout call.
type placer struct {
	style      Style
	margin     float64
	bottom     float64
	degenerate bool

	out     []Instruction
	cursor  float64
	empty   bool    // nothing placed on the current page yet
	prevDot float64 // centre Y of the last dot on this page; NaN when there is none
}

func (p *placer) newPage() {
	p.out = append(p.out, Instruction{Kind: KindPage, Payload: Payload{Entry: HeaderEntry}})
	p.cursor = p.margin
	p.empty = true
	p.prevDot = math.NaN()
}

// reserve moves to a new page when a block of height h does not fit.
func (p *placer) reserve(h float64) {
	if p.empty {
		return
	}
	if p.degenerate || p.cursor+h > p.bottom {
		p.newPage()
	}
}

func (p *placer) contentWidth() float64 {
	return p.style.PageWidth - 2*p.margin
}

func (p *placer) textWidth() float64 {
	return p.contentWidth() - p.style.Gutter
}

func (p *placer) maxCells(fontSize float64) int {
	return int(p.textWidth() / (fontSize * p.style.CharWidth))
}

func (p *placer) header(h Header) {
	s := p.style
	if title := strings.TrimSpace(h.Title); title != "" {
		size := s.TitleSize * 1.5
		lines := wrap(title, int(p.contentWidth()/(size*s.CharWidth)))
		height := float64(len(lines))*size*s.LineHeight + s.EntryGap
		p.reserve(height)
		p.out = append(p.out, Instruction{
			X: p.margin, Y: p.cursor, Kind: KindText,
			Payload: Payload{Lines: lines, FontSize: size, LineHeight: size * s.LineHeight, Bold: true, Entry: HeaderEntry},
		})
		p.cursor += height
		p.empty = false
	}

	if h.ImageWidth > 0 && h.ImageHeight > 0 {
		w := p.contentWidth()
		ih := w * float64(h.ImageHeight) / float64(h.ImageWidth)
		if s.MapHeight > 0 && ih > s.MapHeight {
			w *= s.MapHeight / ih
			ih = s.MapHeight
		}
		if w > 0 && ih > 0 {
			p.reserve(ih + s.EntryGap)
			p.out = append(p.out, Instruction{
				X: p.margin, Y: p.cursor, Kind: KindImage,
				Payload: Payload{Width: w, Height: ih, Entry: HeaderEntry},
			})
			p.cursor += ih + s.EntryGap
			p.empty = false
		}
	}
}

// entry places one timeline entry: an optional page break, a connector from
// the previous dot on the same page, the dot, the title and the body.
func (p *placer) entry(i int, entry domain.TimelineEntry) {
	s := p.style
	title, body, bold := entryText(entry)
	titleSize := s.BodySize
	if bold {
		titleSize = s.TitleSize
	}
	titleLines := wrap(title, p.maxCells(titleSize))
	if len(titleLines) == 0 {
		titleLines = []string{""}
	}
	var bodyLines []string
	for _, para := range body {
		bodyLines = append(bodyLines, wrap(para, p.maxCells(s.BodySize))...)
	}

	titleStep := titleSize * s.LineHeight
	bodyStep := s.BodySize * s.LineHeight
	height := float64(len(titleLines))*titleStep + float64(len(bodyLines))*bodyStep + s.EntryGap

	if p.degenerate {
		// Every entry starts a page; the first one already has a fresh page
		// unless the header used it.
		if !p.empty {
			p.newPage()
		}
	} else {
		p.reserve(height)
	}

	dotX := p.margin + s.DotRadius
	dotY := p.cursor + titleStep/2
	if !math.IsNaN(p.prevDot) {
		p.out = append(p.out, Instruction{
			X: dotX, Y: p.prevDot + s.DotRadius, Kind: KindLine,
			Payload: Payload{X2: dotX, Y2: dotY - s.DotRadius - s.ConnectGap, Entry: i},
		})
	}
	p.out = append(p.out, Instruction{
		X: dotX, Y: dotY, Kind: KindCircle,
		Payload: Payload{Radius: s.DotRadius, Filled: entry.Kind == domain.EntryStop, Entry: i},
	})

	textX := p.margin + s.Gutter
	p.out = append(p.out, Instruction{
		X: textX, Y: p.cursor, Kind: KindText,
		Payload: Payload{Lines: titleLines, FontSize: titleSize, LineHeight: titleStep, Bold: bold, Entry: i},
	})
	y := p.cursor + float64(len(titleLines))*titleStep
	if len(bodyLines) > 0 {
		p.out = append(p.out, Instruction{
			X: textX, Y: y, Kind: KindText,
			Payload: Payload{Lines: bodyLines, FontSize: s.BodySize, LineHeight: bodyStep, Entry: i},
		})
	}

	p.cursor += height
	p.prevDot = dotY
	p.empty = false
}

// entryText returns the title, body paragraphs and title weight of an entry.
func entryText(entry domain.TimelineEntry) (title string, body []string, bold bool) {
	switch {
	case entry.Kind == domain.EntryStop && entry.Stop != nil:
		st := entry.Stop
		var when []string
		if st.Time != "" {
			when = append(when, st.Time)
		}
		if st.Duration != "" {
			when = append(when, st.Duration)
		}
		if len(when) > 0 {
			body = append(body, strings.Join(when, " · "))
		}
		if st.Description != "" {
			body = append(body, st.Description)
		}
		return st.Name, body, true
	case entry.Kind == domain.EntryLeg && entry.Leg != nil:
		l := entry.Leg
		parts := make([]string, 0, 2)
		if l.Transport != "" {
			parts = append(parts, l.Transport)
		}
		if l.TravelTime != "" {
			parts = append(parts, l.TravelTime)
		}
		return strings.Join(parts, " · "), nil, false
	default:
		return "", nil, false
	}
}
