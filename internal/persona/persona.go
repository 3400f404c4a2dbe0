// Package persona loads the persona definition from a YAML file or the environment.
package persona

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"persona-agent/internal/agent"
	"persona-agent/internal/config"
	"persona-agent/shared/models"
)

// File is the on-disk persona format.
type File struct {
	Name         string `yaml:"name"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Parse decodes a persona YAML document. Unknown keys are rejected.
func Parse(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("%w: decode persona: %w", models.ErrConfig, err)
	}
	return f, nil
}

// LoadFile reads and parses the persona at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("%w: read persona file: %w", models.ErrConfig, err)
	}
	return Parse(data)
}

// FromConfig builds the agent persona. A persona file takes precedence over
// PERSONA_PROMPT; the name falls back to the configured one.
func FromConfig(pc config.PersonaConfig, apiKey string) (agent.Persona, error) {
	p := agent.Persona{Name: pc.Name, SystemPrompt: pc.Prompt, APIKey: apiKey}
	if pc.File != "" {
		f, err := LoadFile(pc.File)
		if err != nil {
			return agent.Persona{}, err
		}
		if f.Name != "" {
			p.Name = f.Name
		}
		p.SystemPrompt = f.SystemPrompt
	}
	if strings.TrimSpace(p.SystemPrompt) == "" {
		return agent.Persona{}, fmt.Errorf("%w: persona system prompt is empty", models.ErrConfig)
	}
	return p, nil
}
