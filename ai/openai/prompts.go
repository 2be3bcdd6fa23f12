package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/essayguide/core"
)

const guidanceResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "theme_analysis": {
      "type": "string"
    },
    "structure_suggestions": {
      "type": "array",
      "items": { "type": "string" },
      "minItems": 3
    },
    "writing_tips": {
      "type": "array",
      "items": { "type": "string" },
      "minItems": 3
    },
    "key_points": {
      "type": "array",
      "items": { "type": "string" },
      "minItems": 3
    }
  },
  "required": ["theme_analysis", "structure_suggestions", "writing_tips", "key_points"],
  "additionalProperties": false
}`

// referenceExcerptLimit bounds how much of each reference body is quoted in
// the user prompt, keeping the request inside small-model context windows.
const referenceExcerptLimit = 300

func buildSystemPrompt() string {
	var sb strings.Builder

	sb.WriteString("You are an experienced essay-writing instructor. ")
	sb.WriteString("Given a writing prompt and a set of reference materials and sample essays, ")
	sb.WriteString("produce structured guidance that helps a student plan and write the essay.\n\n")
	sb.WriteString("Respond with a single JSON object matching this schema:\n")
	sb.WriteString(guidanceResponseSchema)
	sb.WriteString("\n\nGround the guidance in the provided references where possible. ")
	sb.WriteString("Provide at least three entries in each list. Respond with JSON only.")

	return sb.String()
}

func buildUserPrompt(prompt *core.EssayPrompt, materials []*core.Material, essays []*core.SampleEssay) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Topic: %s\n", prompt.Title)
	if prompt.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", prompt.Description)
	}
	fmt.Fprintf(&sb, "Essay type: %s\n", prompt.EssayType)
	fmt.Fprintf(&sb, "Difficulty: %s\n", prompt.Difficulty)
	if len(prompt.Keywords) > 0 {
		fmt.Fprintf(&sb, "Keywords: %s\n", strings.Join(prompt.Keywords, ", "))
	}
	for _, req := range prompt.Requirements {
		fmt.Fprintf(&sb, "Requirement: %s\n", req)
	}

	if len(materials) > 0 {
		sb.WriteString("\nReference materials:\n")
		for i, m := range materials {
			fmt.Fprintf(&sb, "%d. [%s] %s: %s\n", i+1, m.Category, m.Title, excerpt(m.Content))
		}
	}

	if len(essays) > 0 {
		sb.WriteString("\nSample essays:\n")
		for i, e := range essays {
			fmt.Fprintf(&sb, "%d. [%s] %s: %s\n", i+1, e.EssayType, e.Title, excerpt(e.Content))
		}
	}

	return sb.String()
}

// excerpt truncates reference text on a rune boundary.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= referenceExcerptLimit {
		return text
	}
	return string(runes[:referenceExcerptLimit]) + "…"
}
