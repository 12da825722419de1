package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
)

// NewGenerateCmd generates and stores a quiz without going through HTTP.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		topic      string
		difficulty string
		count      int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a quiz with AI, falling back to the static bank",
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

			res, err := rt.generator.GenerateQuiz(cmd.Context(), app.GenerateRequest{
				Topic:         topic,
				Difficulty:    domain.Difficulty(difficulty),
				QuestionCount: count,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "quiz %d created with %d questions (%s)\n", res.QuizID, res.QuestionCount, res.Source)
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "quiz topic")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyMedium), "easy, medium or hard")
	cmd.Flags().IntVar(&count, "count", 10, "number of questions (5-50)")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}
