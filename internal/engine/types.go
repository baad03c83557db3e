package engine

// Feedback values accepted by RecordFeedback.
const (
	FeedbackGood        = "good"
	FeedbackBad         = "bad"
	FeedbackRecalculate = "recalculate"
)

// Feedback result statuses.
const (
	StatusRecorded         = "recorded"
	StatusDuplicateIgnored = "duplicate_ignored"
)

// Verdicts assigned by Evaluate.
const (
	VerdictReliable = "reliable"
	VerdictModerate = "moderate"
	VerdictSuspect  = "suspect"
)

// #region request
// Evidence is one observed value for a key, reduced to its median.
type Evidence struct {
	Median float64 `json:"median"`
}

// Context carries the caller-supplied quality metadata for an evaluation.
type Context struct {
	Domain        string  `json:"domain"`
	Confidence    float64 `json:"confidence"`
	DomainKnown   bool    `json:"domain_known"`
	MissingFields int     `json:"missing_fields"`
	Warnings      int     `json:"warnings"`
}

// EvaluationRequest is the structured evaluation input, validated at the
// boundary rather than probed as a loose dictionary.
type EvaluationRequest struct {
	Inference map[string]float64  `json:"inference"`
	Evidence  map[string]Evidence `json:"evidence"`
	Context   Context             `json:"context"`
}
// #endregion request

// #region result
// Meta echoes the engine internals that produced a result.
type Meta struct {
	K                 float64 `json:"k"`
	Eta               float64 `json:"eta"`
	TotalSessions     uint64  `json:"total_sessions"`
	DomainWeight      float64 `json:"domain_weight"`
	ContextMatchScore float64 `json:"context_match_score"`
	Purity            float64 `json:"purity"`
	Alpha             float64 `json:"alpha"`
	Beta              float64 `json:"beta"`
}

// Result is the outcome of one evaluation.
type Result struct {
	SessionID          string  `json:"session_id"`
	Deviation          float64 `json:"deviation"`
	Temperature        float64 `json:"temperature"`
	Integrity          float64 `json:"integrity"`
	ConfidenceAdjusted float64 `json:"confidence_adjusted"`
	Verdict            string  `json:"verdict"`
	VerdictJA          string  `json:"verdict_ja"`
	Meta               Meta    `json:"meta"`
}
// #endregion result

// #region feedback-result
// FeedbackResult reports how a feedback submission was applied.
type FeedbackResult struct {
	Status    string  `json:"status"`
	Reward    float64 `json:"reward"`
	NewWeight float64 `json:"new_weight"`
	Domain    string  `json:"domain"`
}
// #endregion feedback-result

// #region patrol-result
// WindowStats summarizes the log window a patrol examined.
type WindowStats struct {
	AvgD       float64 `json:"avgD"`
	SumR       float64 `json:"sumR"`
	AvgPsi     float64 `json:"avgPsi"`
	WindowSize int     `json:"window_size"`
}

// PatrolResult reports one self-tuning pass.
type PatrolResult struct {
	Adjusted bool        `json:"adjusted"`
	Reason   string      `json:"reason"`
	NewK     float64     `json:"new_k"`
	NewEta   float64     `json:"new_eta"`
	Window   WindowStats `json:"window"`
	Manual   bool        `json:"manual"`
}
// #endregion patrol-result

// #region status
// DomainWeight pairs a domain with its learned weight for status output.
type DomainWeight struct {
	Domain string  `json:"domain"`
	Weight float64 `json:"weight"`
}

// Status is an operator snapshot of the engine.
type Status struct {
	K                   float64            `json:"k"`
	Eta                 float64            `json:"eta"`
	TotalSessions       uint64             `json:"total_sessions"`
	AvgDeviation        float64            `json:"avg_deviation"`
	ToNextPatrol        int                `json:"to_next_patrol"`
	Domains             []DomainWeight     `json:"domains"`
	VerdictDistribution map[string]int     `json:"verdict_distribution"`
	VerdictPercentages  map[string]float64 `json:"verdict_distribution_pct"`
	KRange              [2]float64         `json:"k_range"`
	EtaRange            [2]float64         `json:"eta_range"`
}
// #endregion status
