package replay

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/integrity-gate/internal/config"
	"github.com/danielpatrickdp/integrity-gate/internal/engine"
)

func tempHarness(t *testing.T, cfg config.Config) *Harness {
	t.Helper()
	h, err := NewHarness(filepath.Join(t.TempDir(), "instance"), cfg)
	if err != nil {
		t.Fatalf("NewHarness: %v", err)
	}
	return h
}

func boolPtr(b bool) *bool { return &b }

func TestRunMixedFixture(t *testing.T) {
	h := tempHarness(t, config.Default())

	f := &Fixture{
		Description: "clean turn, cool-down turn, regeneration turn",
		Turns: []FixtureTurn{
			{
				TurnID:    "t1",
				Input:     "今日の天気を教えてください",
				Domain:    "weather",
				Responses: []string{"出典によると、晴れの見込みです。"},
				Feedback:  engine.FeedbackGood,
				Expect: &Expectation{
					RiskLevel:    "low",
					OutputLevel:  "healthy",
					OutputAction: "pass",
					Verdict:      engine.VerdictModerate,
				},
			},
			{
				TurnID: "t2",
				Input:  "今すぐ 早く 急いで 絶対 必ず 確実に 完璧に 一瞬で 無限に なんか とか ざっくり！！！",
				Expect: &Expectation{RiskLevel: "critical"},
			},
			{
				TurnID: "t3",
				Input:  "こんにちは",
				Responses: []string{
					"必ず成功します。絶対に失敗しません。しかし失敗するかもしれません。使えないツールはバカげています。",
					"おそらく成功します。根拠はテスト結果です。",
				},
				Expect: &Expectation{
					OutputAction: "pass",
					Regenerated:  boolPtr(true),
				},
			},
		},
	}

	sum, results, err := h.Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.TotalTurns != 3 || sum.CoolDowns != 1 || sum.Regenerated != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Matched != 3 || sum.Mismatched != 0 {
		for _, r := range results {
			if len(r.Mismatches) > 0 {
				t.Logf("turn %s: %v", r.TurnID, r.Mismatches)
			}
		}
		t.Fatalf("expected all expectations to match, summary = %+v", sum)
	}

	if results[1].SessionID != nil {
		t.Fatalf("cool-down turn must not produce a session")
	}
	if results[2].SessionID == nil || !results[2].Regenerated {
		t.Fatalf("regenerated turn = %+v", results[2])
	}

	// t1's good vote lands on the weather domain weight.
	st := h.Engine().CurrentStatus()
	found := false
	for _, dw := range st.Domains {
		if dw.Domain == "weather" && dw.Weight > 1.0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("feedback not applied to domain weight: %+v", st.Domains)
	}
}

func TestRunReportsMismatch(t *testing.T) {
	h := tempHarness(t, config.Default())

	f := &Fixture{
		Turns: []FixtureTurn{{
			TurnID:    "t1",
			Input:     "こんにちは",
			Responses: []string{"出典：問題ありません。"},
			Expect:    &Expectation{RiskLevel: "critical"},
		}},
	}

	sum, results, err := h.Run(context.Background(), f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Mismatched != 1 || len(results[0].Mismatches) != 1 {
		t.Fatalf("expected one mismatch, got %+v", results[0])
	}
}

func TestLoadFixture(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")

	f := Fixture{
		Description: "roundtrip",
		Config:      &FixtureConfig{MaxRegenAttempts: 3},
		Turns: []FixtureTurn{{
			TurnID:    "t1",
			Input:     "こんにちは",
			Responses: []string{"こんにちは！"},
		}},
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if got.Description != "roundtrip" || len(got.Turns) != 1 {
		t.Fatalf("fixture = %+v", got)
	}

	cfg := got.Config.ToConfig()
	if cfg.MaxRegenAttempts != 3 {
		t.Fatalf("MaxRegenAttempts = %d", cfg.MaxRegenAttempts)
	}
	if cfg.BaseTemperature != config.Default().BaseTemperature {
		t.Fatalf("unset overrides must keep defaults, got %v", cfg.BaseTemperature)
	}

	if _, err := LoadFixture(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("expected error for missing fixture")
	}
}

func TestLoadFixtureRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"description":"x"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatalf("expected error for fixture without turns")
	}
}
