// Package prompts builds the instruction text sent to the completion
// provider. Two templates exist: a plain rephrase instruction wrapping a
// raw prompt, and a structured instruction assembled from a prompt
// canvas. The section labels and their order are a compatibility
// contract — the model is steered by this exact structure.
package prompts

import (
	"fmt"
	"strings"

	"github.com/c360studio/grompt/canvas"
)

// rephraseTemplate is the plain-mode instruction. The trailing
// "Rephrased:" cue must stay the final line — the model continues
// generation after it.
const rephraseTemplate = `You are a professional prompt engineer. Optimize this prompt by making it clearer, more concise, and more effective.
User request: "%s"
Rephrased:`

// canvasTemplate is the structured-mode instruction. Sections appear in
// fixed order: role sentence, Task, Step-by-Step Approach, Context,
// References, Output Requirements.
const canvasTemplate = `You are a %s focused on delivering results for %s.

Task: %s

Step-by-Step Approach:
%s

Context: %s

References: %s

Output Requirements:
- Format: %s
- Tone: %s`

// Build produces the instruction text for a request. A non-nil canvas
// always wins over the raw prompt. Field content is passed through
// verbatim: no validation, no escaping.
func Build(raw string, c *canvas.Canvas) string {
	if c != nil {
		return Canvas(c)
	}
	return Rephrase(raw)
}

// Rephrase wraps a raw prompt in the plain optimization instruction.
func Rephrase(prompt string) string {
	return fmt.Sprintf(rephraseTemplate, prompt)
}

// Canvas assembles the structured instruction from a prompt canvas.
// An empty steps slice yields an empty section body; an empty
// references slice renders as an empty string rather than an error.
func Canvas(c *canvas.Canvas) string {
	bullets := make([]string, len(c.Steps))
	for i, step := range c.Steps {
		bullets[i] = "- " + step
	}

	return fmt.Sprintf(canvasTemplate,
		c.Persona,
		c.Audience,
		c.Task,
		strings.Join(bullets, "\n"),
		c.Context,
		strings.Join(c.References, ", "),
		c.OutputFormat,
		c.Tonality,
	)
}
