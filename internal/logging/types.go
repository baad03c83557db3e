package logging

import "time"

// #region evaluation-record
// EvaluationRecord is one archived evaluation outcome.
type EvaluationRecord struct {
	SessionID string
	Domain    string
	D         float64
	T         float64
	Psi       float64
	Verdict   string
	CreatedAt time.Time
}
// #endregion evaluation-record

// #region feedback-record
// FeedbackRecord is one archived feedback application.
type FeedbackRecord struct {
	SessionID string
	Domain    string
	Feedback  string
	Reward    float64
	NewWeight float64
	CreatedAt time.Time
}
// #endregion feedback-record
