package tutor

import "fmt"

// Educational prompt templates for the supported learning scenarios.

const tutorSystemPrompt = `You are an expert educational tutor aligned with SDG 4 (Quality Education).
Provide clear, accurate, and encouraging responses. Adapt your explanations to the user's level.
Focus on understanding rather than memorization. Use examples and analogies when helpful.`

func buildTutorPrompt(question string) string {
	return fmt.Sprintf(`%s

Student Question: %s

Please provide a helpful, educational response that promotes understanding and learning.`, tutorSystemPrompt, question)
}

func buildExplainPrompt(topic, level, context string) string {
	return fmt.Sprintf(`Explain the concept of "%s" in a way that's appropriate for %s level students.
Include:
1. A clear definition
2. Why it's important
3. A real-world example
4. Common misconceptions to avoid

Topic: %s
Student Level: %s
Additional Context: %s`, topic, level, topic, level, context)
}

func buildQuizPrompt(topic, difficulty string, numQuestions int) string {
	return fmt.Sprintf(`Create a %s level quiz about "%s" with %d questions.
Format as JSON with this structure:
{"questions": [{"question": "...", "options": ["A", "B", "C", "D"], "correct": "A", "explanation": "..."}]}

Topic: %s
Difficulty: %s
Number of questions: %d`, difficulty, topic, numQuestions, topic, difficulty, numQuestions)
}
