package tutor

// AskRequest is the payload for POST /tutor.
type AskRequest struct {
	Question string `json:"question" validate:"required,min=1,max=4000"`
}

// ExplainRequest is the payload for POST /explain.
type ExplainRequest struct {
	Topic   string `json:"topic" validate:"required,min=1,max=200"`
	Level   string `json:"level" validate:"level"`
	Context string `json:"context" validate:"max=500"`
}

// QuizRequest is the payload for POST /quiz.
type QuizRequest struct {
	Topic        string `json:"topic" validate:"required,min=1,max=200"`
	Difficulty   string `json:"difficulty" validate:"difficulty"`
	NumQuestions int    `json:"num_questions" validate:"gte=0,lte=10"`
}
