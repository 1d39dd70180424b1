package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"triage/internal/domain"
	"triage/internal/logger"
)

// Router classifies incoming requests into a fixed taxonomy and decides
// which downstream agent should handle them. On any failure it returns the
// explicit escalate-to-a-human signal instead of an error.
type Router struct {
	gen domain.Generator
}

// NewRouter builds a router around the given generator. A nil generator
// puts the router in permanently degraded mode.
func NewRouter(gen domain.Generator) *Router {
	return &Router{gen: gen}
}

// Classify tags the request context with a category, confidence, routing
// target and reasoning.
func (r *Router) Classify(ctx context.Context, text string) domain.Classification {
	if r.gen == nil {
		return manualFallback("generation backend not configured")
	}
	data, err := r.gen.GenerateJSON(ctx, buildRoutePrompt(text))
	if err != nil {
		logger.Warnf("classification failed, escalating to manual: %v", err)
		return manualFallback(fmt.Sprintf("Error: %v", err))
	}
	var out domain.Classification
	if err := json.Unmarshal(data, &out); err != nil {
		logger.Warnf("classification returned malformed JSON, escalating to manual: %v", err)
		return manualFallback(fmt.Sprintf("Error: %v", err))
	}
	if !validType(out.Type) {
		return manualFallback(fmt.Sprintf("unrecognized category %q", out.Type))
	}
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	if out.TargetAgent == "" {
		out.TargetAgent = routeFor(out.Type)
	}
	return out
}

func manualFallback(reason string) domain.Classification {
	return domain.Classification{
		Type:        domain.TypeUnknown,
		Confidence:  0.0,
		TargetAgent: domain.AgentManual,
		Reasoning:   reason,
	}
}

func validType(t string) bool {
	switch t {
	case domain.TypeBug, domain.TypeStory, domain.TypeQuestion, domain.TypeAccess, domain.TypeOther:
		return true
	}
	return false
}

func routeFor(t string) string {
	switch t {
	case domain.TypeBug, domain.TypeStory:
		return domain.AgentDecomposition
	default:
		return domain.AgentSupport
	}
}

func buildRoutePrompt(text string) string {
	var b strings.Builder
	b.WriteString(`You are the intake router agent for an issue-tracker automation system.
Your job is to classify the incoming request into one of the following categories:
- Bug: A problem or error in an existing system.
- Story: A new feature or requirement.
- Question: A general inquiry or support question.
- Access: A request for permissions or access.
- Other: Anything else.

Analyze the following request context and return a JSON object with:
- type: The category (Bug, Story, Question, Access, Other)
- confidence: A score between 0.0 and 1.0
- target_agent: The agent to handle this (DecompositionAgent for Bug/Story, SupportAgent for Question/Access)
- reasoning: A brief explanation of why you chose this category.

Request Context:
`)
	b.WriteString(text)
	return b.String()
}
