package ai

import (
	"fmt"

	"quiz-assessment-service/internal/domain"
)

var difficultyFocus = map[domain.Difficulty]string{
	domain.DifficultyEasy:   "basic concepts and fundamentals that a beginner should know",
	domain.DifficultyMedium: "intermediate concepts requiring some experience and understanding",
	domain.DifficultyHard:   "advanced concepts requiring deep knowledge and complex problem-solving",
}

// BuildPrompt renders the generation instruction. The output depends only on
// its arguments.
func BuildPrompt(topic string, difficulty domain.Difficulty, count int) string {
	return fmt.Sprintf(`You are an expert quiz creator. Generate %[3]d multiple-choice questions about %[1]q at %[2]s level.

STRICT REQUIREMENTS:
1. Each question must test %[4]s
2. Provide exactly 4 options (A, B, C, D) for each question
3. Only ONE option should be correct
4. Keep explanations SHORT - maximum 2-3 sentences
5. Questions must be clear, factual, and unambiguous
6. Avoid overly complex or trick questions
7. Base questions on well-established, verifiable facts only

EXPLANATION RULES:
- Maximum 2-3 sentences per explanation
- State only the core reason why the answer is correct
- Do NOT include unnecessary details or tangents

RESPONSE FORMAT (STRICT JSON, ONE OBJECT):
{"questions":[{"question":"Clear, concise question text?","options":{"A":"Short option text","B":"Short option text","C":"Short option text","D":"Short option text"},"correct_answer":"A","explanation":"Brief explanation in 2-3 sentences maximum."}]}

Topic: %[1]s
Difficulty: %[2]s
Number of questions: %[3]d

CRITICAL INSTRUCTIONS:
- Return ONLY valid, complete, compact JSON as a single object with a "questions" array
- NO prose before or after the JSON
- NO markdown formatting or code blocks
- Keep ALL text concise to prevent truncation
- Each explanation must be under 100 words
- Ensure JSON is properly closed with all brackets and braces`, topic, difficulty, count, difficultyFocus[difficulty])
}
