package inputgate

import (
	"math"
	"strings"
	"testing"
)

func TestAnalyzeCleanTextIsLow(t *testing.T) {
	a := Analyze("富士山の高さを教えてください。", DefaultWeights())

	if a.RiskLevel != LevelLow {
		t.Fatalf("expected low, got %s (pre_d=%v)", a.RiskLevel, a.PreD)
	}
	if a.Action != ActionProceed {
		t.Fatalf("expected proceed, got %s", a.Action)
	}
	if a.TemperatureModifier != 1.0 {
		t.Fatalf("expected modifier 1.0, got %v", a.TemperatureModifier)
	}
	if len(a.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", a.Warnings)
	}
}

func TestAnalyzeZeroHitsScoreZero(t *testing.T) {
	a := Analyze("hello world", DefaultWeights())
	for name, s := range map[string]float64{
		"ambiguity":          a.Scores.Ambiguity,
		"assertion_demand":   a.Scores.AssertionDemand,
		"emotional_pressure": a.Scores.EmotionalPressure,
		"unrealistic":        a.Scores.Unrealistic,
	} {
		if s != 0.0 {
			t.Fatalf("expected %s score 0.0, got %v", name, s)
		}
	}
}

func TestSaturationMonotoneAndBounded(t *testing.T) {
	prev := -1.0
	for hits := 0; hits <= 20; hits++ {
		text := strings.Repeat("絶対 ", hits)
		a := Analyze(text, DefaultWeights())
		s := a.Scores.AssertionDemand
		if s < prev {
			t.Fatalf("score decreased at %d hits: %v < %v", hits, s, prev)
		}
		if s < 0 || s >= 1.0 {
			t.Fatalf("score out of [0,1) at %d hits: %v", hits, s)
		}
		prev = s
	}
}

func TestSaturationMatchesTanh(t *testing.T) {
	a := Analyze("絶対", DefaultWeights())
	want := math.Tanh(1.0 / 3.0 * 1.8)
	if a.Scores.AssertionDemand != want {
		t.Fatalf("expected tanh(1/3*1.8)=%v, got %v", want, a.Scores.AssertionDemand)
	}
}

func TestAnalyzeAllCategoriesEscalates(t *testing.T) {
	// Hits in all four categories plus exclamation marks.
	a := Analyze("今すぐ！絶対に！完璧に！使えない！", DefaultWeights())

	if a.RiskLevel != LevelHigh && a.RiskLevel != LevelCritical {
		t.Fatalf("expected high or critical, got %s (pre_d=%v)", a.RiskLevel, a.PreD)
	}
	if a.PreD > 1.0 {
		t.Fatalf("pre_d must be capped at 1.0, got %v", a.PreD)
	}
	if len(a.Warnings) < 3 {
		t.Fatalf("expected warnings for the active categories, got %v", a.Warnings)
	}
}

func TestAnalyzeEmotionAssertionPairBoost(t *testing.T) {
	paired := Analyze("急いで 絶対", DefaultWeights())

	// Exactly two active categories with emotion+assertion: pre_d gains 10%.
	base := paired.Scores.AssertionDemand*0.25 + paired.Scores.EmotionalPressure*0.30
	want := math.Min(1.0, base*1.10)
	if math.Abs(paired.PreD-want) > 1e-12 {
		t.Fatalf("expected boosted pre_d %v, got %v", want, paired.PreD)
	}
}

func TestExclamationBoostCapped(t *testing.T) {
	three := Analyze("急いで!!!", DefaultWeights())
	ten := Analyze("急いで!!!!!!!!!!", DefaultWeights())
	if three.Scores.EmotionalPressure != ten.Scores.EmotionalPressure {
		t.Fatalf("exclamation boost must cap at +3: %v vs %v",
			three.Scores.EmotionalPressure, ten.Scores.EmotionalPressure)
	}
}

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		preD   float64
		level  string
		action string
		tMod   float64
	}{
		{0.0, LevelLow, ActionProceed, 1.0},
		{0.29, LevelLow, ActionProceed, 1.0},
		{0.30, LevelModerate, ActionClarify, 0.7},
		{0.50, LevelHigh, ActionConditional, 0.5},
		{0.69, LevelHigh, ActionConditional, 0.5},
		{0.70, LevelCritical, ActionCoolDown, 0.3},
		{1.0, LevelCritical, ActionCoolDown, 0.3},
	}
	for _, tc := range cases {
		level, action, tMod := classify(tc.preD)
		if level != tc.level || action != tc.action || tMod != tc.tMod {
			t.Fatalf("classify(%v) = (%s, %s, %v), want (%s, %s, %v)",
				tc.preD, level, action, tMod, tc.level, tc.action, tc.tMod)
		}
	}
}

func TestRebuildPrompt(t *testing.T) {
	text := "これは質問です"

	critical := Analysis{RiskLevel: LevelCritical}
	if p, tag := RebuildPrompt(text, critical); p != "" || tag != "critical" {
		t.Fatalf("critical: got (%q, %q)", p, tag)
	}

	low := Analysis{RiskLevel: LevelLow}
	if p, tag := RebuildPrompt(text, low); p != text || tag != "none" {
		t.Fatalf("low: got (%q, %q)", p, tag)
	}

	moderate := Analysis{RiskLevel: LevelModerate}
	if p, tag := RebuildPrompt(text, moderate); !strings.HasSuffix(p, text) || !strings.HasPrefix(p, "[指針") || tag != "moderate" {
		t.Fatalf("moderate: got (%q, %q)", p, tag)
	}

	high := Analysis{RiskLevel: LevelHigh}
	if p, tag := RebuildPrompt(text, high); !strings.HasSuffix(p, text) || !strings.HasPrefix(p, "[重要指針") || tag != "high" {
		t.Fatalf("high: got (%q, %q)", p, tag)
	}
}
