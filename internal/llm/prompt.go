package llm

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed functions.yaml
var functionsYAML []byte

// Schema is the subset of the Gemini OpenAPI schema used by the declarations.
type Schema struct {
	Type        string            `yaml:"type" json:"type"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Properties  map[string]Schema `yaml:"properties,omitempty" json:"properties,omitempty"`
	Required    []string          `yaml:"required,omitempty" json:"required,omitempty"`
}

// FunctionDeclaration describes one function the model may call.
type FunctionDeclaration struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Parameters  Schema `yaml:"parameters" json:"parameters"`
}

// Declarations decodes the embedded function declarations.
func Declarations() ([]FunctionDeclaration, error) {
	var decls []FunctionDeclaration
	if err := yaml.Unmarshal(functionsYAML, &decls); err != nil {
		return nil, fmt.Errorf("llm.Declarations: %w", err)
	}
	return decls, nil
}

const systemInstruction = `You plan a single day out for the user.
Answer only by calling the location and line functions.
Call location once for every place, with its coordinates, and give every
scheduled stop a 24-hour HH:MM time and a 1-based sequence.
Call line once for every move between two consecutive stops, reusing the
exact coordinates of those stops as start and end, with the transport mode
and the travel time.
Do not reply with plain text.`
