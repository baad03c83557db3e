package outputgate

// Health levels assigned to generated text.
const (
	LevelHealthy  = "healthy"
	LevelCautious = "cautious"
	LevelDegraded = "degraded"
	LevelCritical = "critical"
)

// Actions the pipeline takes per health level.
const (
	ActionPass       = "pass"
	ActionAnnotate   = "annotate"
	ActionSoften     = "soften"
	ActionRegenerate = "regenerate"
)

// #region weights
// Weights are the per-category multipliers applied to the saturated scores.
type Weights struct {
	Assertion     float64 `json:"w_assertion"`
	Evidence      float64 `json:"w_evidence"`
	Contradiction float64 `json:"w_contradiction"`
	Provocative   float64 `json:"w_provocative"`
}

// DefaultWeights returns the standard output-gate weighting.
func DefaultWeights() Weights {
	return Weights{
		Assertion:     0.30,
		Evidence:      0.30,
		Contradiction: 0.25,
		Provocative:   0.15,
	}
}
// #endregion weights

// #region analysis
// Scores holds the saturated per-category risk scores.
type Scores struct {
	AssertionDensity float64 `json:"assertion_density"`
	EvidenceGap      float64 `json:"evidence_gap"`
	Contradiction    float64 `json:"contradiction"`
	Provocative      float64 `json:"provocative"`
}

// Counts holds the raw hit counts behind the scores.
type Counts struct {
	Assertions     int `json:"assertions"`
	Contradictions int `json:"contradictions"`
	Provocative    int `json:"provocative"`
}

// Notes carries auxiliary observations about the text.
type Notes struct {
	HasEvidence bool `json:"has_evidence"`
}

// Analysis is the full output-gate verdict for one generated response.
type Analysis struct {
	Scores      Scores  `json:"scores"`
	PostD       float64 `json:"post_d"`
	Level       string  `json:"level"`
	Action      string  `json:"action"`
	PsiModifier float64 `json:"psi_modifier"`
	Counts      Counts  `json:"counts"`
	Notes       Notes   `json:"notes"`
}
// #endregion analysis
