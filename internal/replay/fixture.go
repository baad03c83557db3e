package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/integrity-gate/internal/config"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string         `json:"description"`
	Config      *FixtureConfig `json:"config"`
	Turns       []FixtureTurn  `json:"turns"`
}

// FixtureConfig overrides individual pipeline settings. Zero-valued
// fields keep their defaults.
type FixtureConfig struct {
	PsiRegenThreshold float64 `json:"psi_regen_threshold"`
	PsiAnnotThreshold float64 `json:"psi_annot_threshold"`
	MaxRegenAttempts  int     `json:"max_regen_attempts"`
	BaseTemperature   float64 `json:"base_temperature"`
}

// FixtureTurn is one recorded user turn with the scripted backend
// responses to serve during replay. Responses beyond the first are
// served on regeneration retries; the last one repeats if the retry
// budget is larger than the script.
type FixtureTurn struct {
	TurnID    string       `json:"turn_id"`
	Input     string       `json:"input"`
	Domain    string       `json:"domain"`
	Responses []string     `json:"responses"`
	Feedback  string       `json:"feedback,omitempty"`
	Expect    *Expectation `json:"expect,omitempty"`
}

// Expectation lists the per-turn assertions. Empty fields are not
// checked.
type Expectation struct {
	RiskLevel    string `json:"risk_level,omitempty"`
	OutputLevel  string `json:"output_level,omitempty"`
	OutputAction string `json:"output_action,omitempty"`
	Verdict      string `json:"verdict,omitempty"`
	Regenerated  *bool  `json:"regenerated,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Turns) == 0 {
		return nil, fmt.Errorf("fixture %s has no turns", path)
	}
	return &f, nil
}

// ToConfig merges the fixture overrides onto the default configuration.
func (fc *FixtureConfig) ToConfig() config.Config {
	cfg := config.Default()
	if fc == nil {
		return cfg
	}
	if fc.PsiRegenThreshold > 0 {
		cfg.PsiRegenThreshold = fc.PsiRegenThreshold
	}
	if fc.PsiAnnotThreshold > 0 {
		cfg.PsiAnnotThreshold = fc.PsiAnnotThreshold
	}
	if fc.MaxRegenAttempts > 0 {
		cfg.MaxRegenAttempts = fc.MaxRegenAttempts
	}
	if fc.BaseTemperature > 0 {
		cfg.BaseTemperature = fc.BaseTemperature
	}
	return cfg
}

// #endregion fixture-loader
