package inputgate

// Risk levels assigned to user input.
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// Actions the pipeline takes per risk level.
const (
	ActionProceed     = "proceed"
	ActionClarify     = "clarify"
	ActionConditional = "conditional"
	ActionCoolDown    = "cool_down"
)

// #region weights
// Weights are the per-category multipliers applied to the saturated scores.
type Weights struct {
	Ambiguity   float64 `json:"w_ambiguity"`
	Assertion   float64 `json:"w_assertion"`
	Emotion     float64 `json:"w_emotion"`
	Unrealistic float64 `json:"w_unrealistic"`
}

// DefaultWeights returns the standard input-gate weighting.
func DefaultWeights() Weights {
	return Weights{
		Ambiguity:   0.20,
		Assertion:   0.25,
		Emotion:     0.30,
		Unrealistic: 0.25,
	}
}
// #endregion weights

// #region analysis
// Scores holds the saturated per-category risk scores, each in [0, 1).
type Scores struct {
	Ambiguity         float64 `json:"ambiguity"`
	AssertionDemand   float64 `json:"assertion_demand"`
	EmotionalPressure float64 `json:"emotional_pressure"`
	Unrealistic       float64 `json:"unrealistic"`
}

// Analysis is the full input-gate verdict for one piece of user text.
type Analysis struct {
	Scores              Scores   `json:"scores"`
	PreD                float64  `json:"pre_d"`
	RiskLevel           string   `json:"risk_level"`
	Action              string   `json:"action"`
	TemperatureModifier float64  `json:"temperature_modifier"`
	Warnings            []string `json:"warnings"`
}
// #endregion analysis
