package hermes

// FeedbackSubmitted is the inbound payload on SubjectFeedbackSubmitted, emitted by the chat bot
// when an operator reports how a delivered script landed.
type FeedbackSubmitted struct {
	ScriptID string `json:"script_id"`
	Feedback string `json:"feedback"`
	UserID   string `json:"user_id,omitempty"`
}

// LearningRecorded announces a hive upsert. Created is false when an existing learning was bumped.
type LearningRecorded struct {
	LearningID   string `json:"learning_id"`
	LearningType string `json:"learning_type"`
	SuccessCount int    `json:"success_count"`
	Created      bool   `json:"created"`
}
