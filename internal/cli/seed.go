package cli

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

//go:embed seed.yaml
var seedYAML []byte

type seedQuestion struct {
	Text          string `yaml:"question_text"`
	OptionA       string `yaml:"option_a"`
	OptionB       string `yaml:"option_b"`
	OptionC       string `yaml:"option_c"`
	OptionD       string `yaml:"option_d"`
	CorrectOption string `yaml:"correct_option"`
	Explanation   string `yaml:"explanation"`
}

type seedQuiz struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Category    string         `yaml:"category"`
	Level       string         `yaml:"level"`
	Questions   []seedQuestion `yaml:"questions"`
}

// NewSeedCmd loads the starter quizzes.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the starter quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			rt, err := buildRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()

			quizzes, err := loadSeed(seedYAML)
			if err != nil {
				return err
			}
			created, err := seed(cmd.Context(), rt.service, quizzes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d quizzes\n", created)
			return nil
		},
	}
}

func loadSeed(data []byte) ([]seedQuiz, error) {
	var doc struct {
		Quizzes []seedQuiz `yaml:"quizzes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return doc.Quizzes, nil
}

// seed creates every quiz whose title is not already present for its
// category and level, and reports how many were created.
func seed(ctx context.Context, service *app.QuizService, quizzes []seedQuiz) (int, error) {
	created := 0
	for _, q := range quizzes {
		existing, err := service.ListQuizzes(ctx, domain.QuizFilter{Category: q.Category, Level: q.Level})
		if err != nil {
			return created, err
		}
		if hasTitle(existing, q.Title) {
			log.Debug().Str("title", q.Title).Msg("seed quiz already present")
			continue
		}

		quizID, err := service.CreateQuiz(ctx, app.CreateQuizInput{
			Title:       q.Title,
			Description: q.Description,
			Category:    q.Category,
			Level:       q.Level,
		})
		if err != nil {
			return created, fmt.Errorf("seed quiz %q: %w", q.Title, err)
		}
		for _, sq := range q.Questions {
			_, err := service.AddQuestion(ctx, quizID, app.AddQuestionInput{
				Text:          sq.Text,
				OptionA:       sq.OptionA,
				OptionB:       sq.OptionB,
				OptionC:       sq.OptionC,
				OptionD:       sq.OptionD,
				CorrectOption: domain.Label(sq.CorrectOption),
				Explanation:   sq.Explanation,
			})
			if err != nil {
				return created, fmt.Errorf("seed question for %q: %w", q.Title, err)
			}
		}
		created++
		log.Info().Int64("quizID", quizID).Str("title", q.Title).Int("questions", len(q.Questions)).Msg("seeded quiz")
	}
	return created, nil
}

func hasTitle(quizzes []domain.Quiz, title string) bool {
	for _, q := range quizzes {
		if q.Title == title {
			return true
		}
	}
	return false
}
