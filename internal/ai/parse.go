package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"quiz-assessment-service/internal/domain"
)

// ResponseSchema is the strict shape every provider response must satisfy.
const ResponseSchema = `{
	"type": "object",
	"properties": {
		"questions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"properties": {
					"question": {"type": "string", "minLength": 10},
					"options": {
						"type": "object",
						"properties": {
							"A": {"type": "string", "minLength": 1},
							"B": {"type": "string", "minLength": 1},
							"C": {"type": "string", "minLength": 1},
							"D": {"type": "string", "minLength": 1}
						},
						"required": ["A", "B", "C", "D"]
					},
					"correct_answer": {"type": "string", "enum": ["A", "B", "C", "D"]},
					"explanation": {"type": "string", "minLength": 10}
				},
				"required": ["question", "options", "correct_answer", "explanation"]
			}
		}
	},
	"required": ["questions"]
}`

var responseSchema = gojsonschema.NewStringLoader(ResponseSchema)

type response struct {
	Questions []domain.Draft `json:"questions"`
}

// ParseDrafts turns raw provider text into validated drafts. It strips code
// fences, rejects text that looks cut off, parses JSON and then checks the
// result against ResponseSchema. Each stage fails with its own error.
func ParseDrafts(raw string) ([]domain.Draft, error) {
	text := StripCodeFence(raw)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	if !strings.HasSuffix(text, "}") && !strings.HasSuffix(text, "]") {
		return nil, fmt.Errorf("%w: last characters %q", ErrTruncated, tail(text, 40))
	}

	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return resp.Questions, nil
}

func validateDocument(doc any) error {
	result, err := gojsonschema.Validate(responseSchema, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
}

// StripCodeFence trims whitespace and removes a wrapping markdown fence with
// an optional language tag.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Drop the language tag, if any, up to the end of the opening line.
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "{[") {
		text = text[nl+1:]
	} else {
		text = strings.TrimLeft(text, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
