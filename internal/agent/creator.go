package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"triage/internal/domain"
	"triage/internal/fields"
	"triage/internal/logger"
)

// Creator decomposes a raw request into issue fields constrained to a
// caller-supplied schema. It never returns an error: any failure along the
// generation path degrades to a deterministic offline fallback record, so a
// ticket can always be drafted even with every backend down.
type Creator struct {
	gen domain.Generator
}

// NewCreator builds a creator around the given generator. A nil generator
// puts the creator in permanently degraded mode.
func NewCreator(gen domain.Generator) *Creator {
	return &Creator{gen: gen}
}

// CreateFields maps raw request text onto the schema's keys, using the
// grounding as supporting evidence. The returned keys are a subset of the
// schema's keys.
func (c *Creator) CreateFields(ctx context.Context, raw string, schema fields.Schema, grounding domain.Grounding) map[string]any {
	if len(schema) == 0 {
		schema = fields.Default()
	}
	if c.gen == nil {
		return Fallback(raw)
	}

	prompt := buildCreatePrompt(raw, schema, grounding)
	data, err := c.gen.GenerateJSON(ctx, prompt)
	if err != nil {
		logger.Warnf("field generation failed, using fallback: %v", err)
		return Fallback(raw)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Warnf("field generation returned malformed JSON, using fallback: %v", err)
		return Fallback(raw)
	}
	conformed := schema.Conform(out)
	if len(conformed) == 0 {
		logger.Warnf("field generation produced no schema keys, using fallback")
		return Fallback(raw)
	}
	return conformed
}

// Fallback is the deterministic no-backend field record. It makes zero
// external calls so it always succeeds.
func Fallback(raw string) map[string]any {
	return map[string]any{
		"summary":             truncate(raw, 50) + "...",
		"description":         raw,
		"issuetype":           "Task",
		"priority":            "Medium",
		"labels":              []string{},
		"acceptance_criteria": "To be determined.",
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func buildCreatePrompt(raw string, schema fields.Schema, grounding domain.Grounding) string {
	var b strings.Builder
	b.WriteString("You are an expert request creator agent for an issue tracker.\n")
	b.WriteString("Your goal is to decompose the following raw request into a structured issue.\n\n")
	b.WriteString("Use the provided context to understand the domain, similar past issues, and architectural guidelines.\n\n")
	b.WriteString("Raw Request:\n")
	b.WriteString(raw)
	b.WriteString("\n\n")
	b.WriteString(serializeGrounding(grounding))
	b.WriteString("IMPORTANT: You must output a valid JSON object that strictly adheres to the following schema.\n")
	b.WriteString("The keys in your JSON output MUST match the keys in the provided schema exactly.\n")
	b.WriteString("Do not invent new keys or use default tracker keys if they are not in the schema.\n\n")
	b.WriteString("Target Schema (JSON):\n")
	b.WriteString(schema.JSON())
	b.WriteString("\n\n")
	b.WriteString(`Instructions:
- Map the extracted information to the fields defined in the Target Schema.
- For fields like 'summary' or 'description', look for keys in the schema that seem to represent them.
- Infer values for fields like issue type and priority based on the schema options if available.

Sizing Logic (Estimate):
- Estimate the story points or complexity if a relevant field exists in the schema.
- 1-2 points: Trivial changes, typos, small UI tweaks.
- 3-5 points: Standard features, well-understood tasks.
- 8-13 points: Complex features, significant refactoring, high uncertainty.
- Epic: Large initiatives that should be broken down.

Issue Type Logic:
- Epic: If it represents a large project or theme.
- Bug: If it describes fixing an error or defect.
- Story: If it describes a user-facing feature.
- Task: If it describes technical work or maintenance.

Ensure the output is valid JSON matching the schema.
`)
	return b.String()
}

func serializeGrounding(g domain.Grounding) string {
	if g.Empty() {
		return ""
	}
	var b strings.Builder
	if len(g.SimilarTickets) > 0 {
		b.WriteString("Similar Past Tickets:\n")
		for _, t := range g.SimilarTickets {
			data, _ := json.Marshal(t)
			b.WriteString(string(data))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if len(g.DocExcerpts) > 0 {
		b.WriteString("Relevant Documentation:\n")
		for i, d := range g.DocExcerpts {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, d)
		}
		b.WriteString("\n")
	}
	return b.String()
}
