package orchestrator

import (
	"github.com/danielpatrickdp/integrity-gate/internal/engine"
	"github.com/danielpatrickdp/integrity-gate/internal/inputgate"
	"github.com/danielpatrickdp/integrity-gate/internal/outputgate"
)

// #region result

// Result is the combined outcome of one generation pipeline run.
// SessionID is nil on the cool-down path: no evaluation happened.
type Result struct {
	SessionID       *string              `json:"session_id"`
	Response        string               `json:"response"`
	InputAnalysis   inputgate.Analysis   `json:"input_analysis"`
	OutputAnalysis  *outputgate.Analysis `json:"output_analysis"`
	Evaluation      *engine.Result       `json:"evaluation"`
	TemperatureUsed float64              `json:"temperature_used"`
	Attempts        int                  `json:"attempts"`
	Regenerated     bool                 `json:"regenerated"`
	Annotated       bool                 `json:"annotated"`
	Model           string               `json:"llm_model"`
}

// #endregion result
