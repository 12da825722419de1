// Package bank holds the curated offline question bank and the static quiz
// generator used when AI generation is unavailable.
package bank

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"

	"quiz-assessment-service/internal/domain"
)

// GeneralTopic is the catch-all bank used for topics without their own entry.
const GeneralTopic = "general"

//go:embed bank.yaml
var defaultBankYAML []byte

// Bank is an immutable topic x difficulty table of question drafts.
type Bank struct {
	topics map[string]map[domain.Difficulty][]domain.Draft
}

type bankFile struct {
	Topics map[string]map[domain.Difficulty][]domain.Draft `yaml:"topics"`
}

// Parse decodes a YAML bank and checks every entry. The general topic must
// cover all difficulties so lookups always have somewhere to fall back.
func Parse(data []byte) (*Bank, error) {
	var file bankFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}

	topics := make(map[string]map[domain.Difficulty][]domain.Draft, len(file.Topics))
	for topic, levels := range file.Topics {
		key := NormalizeTopic(topic)
		byLevel := make(map[domain.Difficulty][]domain.Draft, len(levels))
		for difficulty, drafts := range levels {
			if !difficulty.Valid() {
				return nil, fmt.Errorf("bank topic %q: unknown difficulty %q", topic, difficulty)
			}
			for i, d := range drafts {
				if err := checkDraft(d); err != nil {
					return nil, fmt.Errorf("bank topic %q %s #%d: %w", topic, difficulty, i, err)
				}
			}
			byLevel[difficulty] = drafts
		}
		topics[key] = byLevel
	}

	general, ok := topics[GeneralTopic]
	if !ok {
		return nil, fmt.Errorf("bank is missing the %q topic", GeneralTopic)
	}
	for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		if len(general[d]) == 0 {
			return nil, fmt.Errorf("bank %q topic has no %s questions", GeneralTopic, d)
		}
	}
	return &Bank{topics: topics}, nil
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the embedded bank, decoded once per process.
func Default() *Bank {
	defaultOnce.Do(func() {
		b, err := Parse(defaultBankYAML)
		if err != nil {
			panic(err)
		}
		defaultBank = b
	})
	return defaultBank
}

// Questions returns the drafts for topic and difficulty, falling back to the
// general bank when the topic has none. The returned slice must not be modified.
func (b *Bank) Questions(topic string, difficulty domain.Difficulty) []domain.Draft {
	if levels, ok := b.topics[NormalizeTopic(topic)]; ok {
		if drafts := levels[difficulty]; len(drafts) > 0 {
			return drafts
		}
	}
	return b.topics[GeneralTopic][difficulty]
}

// Topics lists the topic keys the bank knows about.
func (b *Bank) Topics() []string {
	out := make([]string, 0, len(b.topics))
	for k := range b.topics {
		out = append(out, k)
	}
	return out
}

// NormalizeTopic lower-cases topic and strips all whitespace, so
// "JavaScript Fundamentals" looks up "javascriptfundamentals".
func NormalizeTopic(topic string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, topic)
}

func checkDraft(d domain.Draft) error {
	if strings.TrimSpace(d.Question) == "" {
		return fmt.Errorf("empty question")
	}
	for _, l := range domain.Labels {
		if text, _ := d.Options.Text(l); strings.TrimSpace(text) == "" {
			return fmt.Errorf("option %s is empty", l)
		}
	}
	if !d.CorrectAnswer.Valid() {
		return fmt.Errorf("correct answer %q is not one of A, B, C, D", d.CorrectAnswer)
	}
	return nil
}
