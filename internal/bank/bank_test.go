package bank

import (
	"math/rand"
	"testing"

	"quiz-assessment-service/internal/domain"
)

func TestDefaultBankCoversGeneralTopic(t *testing.T) {
	b := Default()
	for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		if len(b.Questions("anything at all", d)) == 0 {
			t.Fatalf("expected general %s questions", d)
		}
	}
}

func TestQuestionsNormalizesTopic(t *testing.T) {
	b := Default()
	got := b.Questions("  JavaScript   Fundamentals ", domain.DifficultyEasy)
	want := b.Questions("javascriptfundamentals", domain.DifficultyEasy)
	if len(got) == 0 || &got[0] != &want[0] {
		t.Fatalf("expected normalized topic to select the javascript bank")
	}
	general := b.Questions(GeneralTopic, domain.DifficultyEasy)
	if &got[0] == &general[0] {
		t.Fatalf("expected topic bank, got general bank")
	}
}

func TestParseRejectsBadEntries(t *testing.T) {
	cases := map[string]string{
		"missing general": `
topics:
  go:
    easy:
      - question: 'What keyword declares a goroutine?'
        options: {A: go, B: async, C: spawn, D: thread}
        correct_answer: A
`,
		"bad label": `
topics:
  general:
    easy:
      - question: 'Pick one of the options below'
        options: {A: a, B: b, C: c, D: d}
        correct_answer: E
`,
		"unknown difficulty": `
topics:
  general:
    extreme:
      - question: 'Pick one of the options below'
        options: {A: a, B: b, C: c, D: d}
        correct_answer: A
`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}

func TestGenerateStaticCyclesSmallBanks(t *testing.T) {
	b := Default()
	hard := b.Questions("Unmapped Topic XYZ", domain.DifficultyHard)
	gen := NewGeneratorWithSource(b, rand.NewSource(7))

	drafts := gen.GenerateStatic("Unmapped Topic XYZ", domain.DifficultyHard, 7)
	if len(drafts) != 7 {
		t.Fatalf("expected 7 drafts, got %d", len(drafts))
	}

	known := make(map[string]bool, len(hard))
	for _, d := range hard {
		known[d.Question] = true
	}
	for _, d := range drafts {
		if !known[d.Question] {
			t.Fatalf("draft %q not drawn from the general hard bank", d.Question)
		}
	}
	// Cycling repeats the shuffled order.
	for i := len(hard); i < len(drafts); i++ {
		if drafts[i].Question != drafts[i%len(hard)].Question {
			t.Fatalf("expected cycle at %d to repeat %q, got %q", i, drafts[i%len(hard)].Question, drafts[i].Question)
		}
	}
}

func TestGenerateStaticTakesPrefixOfLargeBanks(t *testing.T) {
	b := Default()
	gen := NewGeneratorWithSource(b, rand.NewSource(1))

	drafts := gen.GenerateStatic("React Development", domain.DifficultyMedium, 3)
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}
	seen := map[string]bool{}
	for _, d := range drafts {
		if seen[d.Question] {
			t.Fatalf("unexpected duplicate %q when bank is larger than count", d.Question)
		}
		seen[d.Question] = true
	}
}

func TestGenerateStaticDoesNotMutateBank(t *testing.T) {
	b := Default()
	before := append([]domain.Draft(nil), b.Questions("javascriptfundamentals", domain.DifficultyHard)...)
	gen := NewGeneratorWithSource(b, rand.NewSource(3))
	for i := 0; i < 5; i++ {
		gen.GenerateStatic("javascriptfundamentals", domain.DifficultyHard, 10)
	}
	after := b.Questions("javascriptfundamentals", domain.DifficultyHard)
	for i := range before {
		if before[i].Question != after[i].Question {
			t.Fatalf("bank order changed at %d", i)
		}
	}
}
