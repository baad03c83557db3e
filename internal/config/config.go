// Package config loads the instance configuration: a JSON file in the
// instance directory with defaults filled in for missing keys, plus
// environment overrides for the adapter selection.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/integrity-gate/internal/inputgate"
	"github.com/danielpatrickdp/integrity-gate/internal/outputgate"
)

const configFileName = "config.json"

// EnvInstanceDir overrides the instance directory location.
const EnvInstanceDir = "RECO3_INSTANCE_DIR"

// #region config
// Config holds the tunable pipeline parameters.
type Config struct {
	LLMAdapter string `json:"llm_adapter"`
	LLMModel   string `json:"llm_model"`

	PsiRegenThreshold float64 `json:"psi_regen_threshold"`
	PsiAnnotThreshold float64 `json:"psi_annot_threshold"`
	MaxRegenAttempts  int     `json:"max_regen_attempts"`
	BaseTemperature   float64 `json:"base_temperature"`

	InputWeights  inputgate.Weights  `json:"input_weights"`
	OutputWeights outputgate.Weights `json:"output_weights"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		LLMAdapter:        "auto",
		LLMModel:          "",
		PsiRegenThreshold: 0.50,
		PsiAnnotThreshold: 0.80,
		MaxRegenAttempts:  2,
		BaseTemperature:   0.7,
		InputWeights:      inputgate.DefaultWeights(),
		OutputWeights:     outputgate.DefaultWeights(),
	}
}
// #endregion config

// #region instance-dir
// InstanceDir returns the configured instance directory, defaulting to
// ./instance next to the working directory.
func InstanceDir() string {
	if dir := os.Getenv(EnvInstanceDir); dir != "" {
		return dir
	}
	return "instance"
}
// #endregion instance-dir

// #region load
// Load reads the config file from dir, creating it with defaults on first
// call. Missing keys keep their default values.
func Load(dir string) (Config, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Config{}, fmt.Errorf("create instance dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, configFileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := write(path, cfg); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
// #endregion load

// #region resolve-adapter
// ResolveAdapter applies the environment overrides on top of the config:
// LLM_ADAPTER wins over the file, and the model falls back to the
// per-provider environment variable when the file leaves it empty.
func (c Config) ResolveAdapter() (name, model string) {
	name = c.LLMAdapter
	if env := os.Getenv("LLM_ADAPTER"); env != "" {
		name = env
	}
	model = c.LLMModel
	if model == "" {
		switch name {
		case "openai", "gpt":
			model = os.Getenv("OPENAI_MODEL")
		case "claude", "anthropic":
			model = os.Getenv("ANTHROPIC_MODEL")
		}
	}
	return name, model
}
// #endregion resolve-adapter
