package ai

import (
	"fmt"
	"strings"
)

// PromptTemplate defines the structure of the tutor system prompt
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// DefaultTutorTemplate is the prompt used when the intent classifier cannot answer.
func DefaultTutorTemplate() PromptTemplate {
	return PromptTemplate{
		SystemPrompt: `You are the assistant of a calculus tutoring site. Visitors type short chat lines; answer in one or two sentences.`,
		PersonalityHints: []string{
			"Be patient and encouraging",
			"Prefer worked examples over definitions",
			"Use the site's input syntax, e.g. diff(cos(x)^7, x) or integrate(1/z, z)",
		},
		ContextRules: []string{
			"Stay on calculus and on how to use the site",
			"If a question is out of scope, say so briefly",
			"Never invent steps you cannot justify",
		},
	}
}

// BuildSystemPrompt renders the template; known lists the topics the intent
// classifier already covers so the model does not contradict them.
func (t PromptTemplate) BuildSystemPrompt(known []string) string {
	var builder strings.Builder
	builder.WriteString(t.SystemPrompt)

	if len(t.PersonalityHints) > 0 {
		builder.WriteString("\n\nStyle:\n- ")
		builder.WriteString(strings.Join(t.PersonalityHints, "\n- "))
	}
	if len(t.ContextRules) > 0 {
		builder.WriteString("\n\nRules:\n- ")
		builder.WriteString(strings.Join(t.ContextRules, "\n- "))
	}
	if len(known) > 0 {
		builder.WriteString(fmt.Sprintf("\n\nTopics with canned answers: %s.", strings.Join(known, ", ")))
	}
	return builder.String()
}
