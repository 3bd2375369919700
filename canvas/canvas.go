// Package canvas defines the structured prompt-design record used by the
// advanced optimization mode. A Canvas captures the eight fields of a
// prompt canvas (persona, audience, task, steps, context, references,
// output format, tonality) as plain text.
package canvas

import "strings"

// Canvas holds the structured prompt-design fields. All fields are
// free-form text; empty values are allowed everywhere. A Canvas is
// built fresh per request and never persisted.
type Canvas struct {
	Persona      string   `json:"persona" yaml:"persona"`
	Audience     string   `json:"audience" yaml:"audience"`
	Task         string   `json:"task" yaml:"task"`
	Steps        []string `json:"steps" yaml:"steps"`
	Context      string   `json:"context" yaml:"context"`
	References   []string `json:"references" yaml:"references"`
	OutputFormat string   `json:"output_format" yaml:"output_format"`
	Tonality     string   `json:"tonality" yaml:"tonality"`
}

// IsZero reports whether no field of the canvas has been set.
func (c *Canvas) IsZero() bool {
	if c == nil {
		return true
	}
	return c.Persona == "" && c.Audience == "" && c.Task == "" &&
		len(c.Steps) == 0 && c.Context == "" && len(c.References) == 0 &&
		c.OutputFormat == "" && c.Tonality == ""
}

// SplitLines parses newline-separated list input (the entry format for
// steps and references in both surfaces) into an ordered slice.
// Lines are trimmed and empty lines discarded; order is preserved.
func SplitLines(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		items = append(items, line)
	}
	return items
}
