package replay

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/integrity-gate/internal/config"
	"github.com/danielpatrickdp/integrity-gate/internal/engine"
	"github.com/danielpatrickdp/integrity-gate/internal/llm"
	"github.com/danielpatrickdp/integrity-gate/internal/orchestrator"
	"github.com/danielpatrickdp/integrity-gate/internal/state"
)

// #region types

// TurnResult captures the outcome of replaying one turn through the
// full pipeline, with any expectation mismatches.
type TurnResult struct {
	TurnID       string   `json:"turn_id"`
	SessionID    *string  `json:"session_id"`
	RiskLevel    string   `json:"risk_level"`
	OutputLevel  string   `json:"output_level,omitempty"`
	OutputAction string   `json:"output_action,omitempty"`
	Verdict      string   `json:"verdict,omitempty"`
	Regenerated  bool     `json:"regenerated"`
	Response     string   `json:"response"`
	Mismatches   []string `json:"mismatches,omitempty"`
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalTurns  int `json:"total_turns"`
	Matched     int `json:"matched"`
	Mismatched  int `json:"mismatched"`
	CoolDowns   int `json:"cool_downs"`
	Regenerated int `json:"regenerated"`
}

// #endregion types

// #region script-adapter

// scriptAdapter serves pre-recorded responses, repeating the last one
// when the retry budget outruns the script.
type scriptAdapter struct {
	script []string
	served int
}

func (s *scriptAdapter) Generate(_ context.Context, _ llm.Request) (llm.Result, error) {
	if len(s.script) == 0 {
		return llm.Result{}, &llm.GenerationError{Kind: llm.KindMissingKey, Detail: "turn has no scripted responses"}
	}
	i := s.served
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	s.served++
	return llm.Result{Text: s.script[i], Model: "replay-script"}, nil
}

func (s *scriptAdapter) Name() string  { return "replay-script" }
func (s *scriptAdapter) Model() string { return "replay-script" }

// #endregion script-adapter

// #region harness

// Harness replays fixture turns through a private engine instance so a
// run never touches live state.
type Harness struct {
	adapter *scriptAdapter
	engine  *engine.Engine
	cfg     config.Config
	orch    *orchestrator.Orchestrator
}

// NewHarness builds a replay pipeline over the given instance
// directory, usually a scratch one.
func NewHarness(dir string, cfg config.Config) (*Harness, error) {
	fs, err := state.NewFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("replay store: %w", err)
	}
	eng, err := engine.New(fs, nil)
	if err != nil {
		return nil, fmt.Errorf("replay engine: %w", err)
	}
	adapter := &scriptAdapter{}
	return &Harness{
		adapter: adapter,
		engine:  eng,
		cfg:     cfg,
		orch:    orchestrator.New(adapter, eng, cfg),
	}, nil
}

// Engine exposes the private engine for post-run inspection.
func (h *Harness) Engine() *engine.Engine { return h.engine }

// Run replays every turn in order, applying feedback votes where the
// fixture records them and checking expectations.
func (h *Harness) Run(ctx context.Context, f *Fixture) (Summary, []TurnResult, error) {
	results := make([]TurnResult, 0, len(f.Turns))
	var sum Summary
	sum.TotalTurns = len(f.Turns)

	for i, turn := range f.Turns {
		h.adapter.script = turn.Responses
		h.adapter.served = 0

		domain := turn.Domain
		if domain == "" {
			domain = "general"
		}

		res, err := h.orch.Process(ctx, turn.Input, domain, nil, 0)
		if err != nil {
			return sum, results, fmt.Errorf("turn %d (%s): %w", i+1, turn.TurnID, err)
		}

		tr := TurnResult{
			TurnID:      turn.TurnID,
			SessionID:   res.SessionID,
			RiskLevel:   res.InputAnalysis.RiskLevel,
			Regenerated: res.Regenerated,
			Response:    res.Response,
		}
		if res.OutputAnalysis != nil {
			tr.OutputLevel = res.OutputAnalysis.Level
			tr.OutputAction = res.OutputAnalysis.Action
		}
		if res.Evaluation != nil {
			tr.Verdict = res.Evaluation.Verdict
		}
		if res.SessionID == nil {
			sum.CoolDowns++
		}
		if res.Regenerated {
			sum.Regenerated++
		}

		if turn.Feedback != "" && res.SessionID != nil {
			if _, err := h.engine.RecordFeedback(*res.SessionID, domain, turn.Feedback); err != nil {
				return sum, results, fmt.Errorf("turn %d (%s) feedback: %w", i+1, turn.TurnID, err)
			}
		}

		tr.Mismatches = checkExpectation(turn.Expect, tr)
		if len(tr.Mismatches) == 0 {
			sum.Matched++
		} else {
			sum.Mismatched++
		}
		results = append(results, tr)
	}
	return sum, results, nil
}

func checkExpectation(e *Expectation, got TurnResult) []string {
	if e == nil {
		return nil
	}
	var out []string
	if e.RiskLevel != "" && got.RiskLevel != e.RiskLevel {
		out = append(out, fmt.Sprintf("risk_level: want %s, got %s", e.RiskLevel, got.RiskLevel))
	}
	if e.OutputLevel != "" && got.OutputLevel != e.OutputLevel {
		out = append(out, fmt.Sprintf("output_level: want %s, got %s", e.OutputLevel, got.OutputLevel))
	}
	if e.OutputAction != "" && got.OutputAction != e.OutputAction {
		out = append(out, fmt.Sprintf("output_action: want %s, got %s", e.OutputAction, got.OutputAction))
	}
	if e.Verdict != "" && got.Verdict != e.Verdict {
		out = append(out, fmt.Sprintf("verdict: want %s, got %s", e.Verdict, got.Verdict))
	}
	if e.Regenerated != nil && got.Regenerated != *e.Regenerated {
		out = append(out, fmt.Sprintf("regenerated: want %v, got %v", *e.Regenerated, got.Regenerated))
	}
	return out
}

// #endregion harness
