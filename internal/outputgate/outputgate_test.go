package outputgate

import (
	"math"
	"testing"
)

func TestAnalyzeHealthyText(t *testing.T) {
	a := Analyze("東京の平均気温は年によって変動します。", DefaultWeights())

	if a.Level != LevelHealthy {
		t.Fatalf("expected healthy, got %s (post_d=%v)", a.Level, a.PostD)
	}
	if a.Action != ActionPass {
		t.Fatalf("expected pass, got %s", a.Action)
	}
	if a.PsiModifier != 1.0 {
		t.Fatalf("expected psi modifier 1.0, got %v", a.PsiModifier)
	}
}

func TestEvidenceGapForcedToSaturation(t *testing.T) {
	// Assertion token present, no evidence marker: gap count is forced to 5.
	a := Analyze("これは必ず正しいです。", DefaultWeights())

	want := math.Tanh(5.0 / 3.0 * 1.2)
	if a.Scores.EvidenceGap != want {
		t.Fatalf("expected saturated evidence gap %v, got %v", want, a.Scores.EvidenceGap)
	}
	if a.Notes.HasEvidence {
		t.Fatal("expected has_evidence=false")
	}

	// Same forcing for the English token.
	b := Analyze("This is definitely correct.", DefaultWeights())
	if b.Scores.EvidenceGap != want {
		t.Fatalf("expected saturated evidence gap %v, got %v", want, b.Scores.EvidenceGap)
	}
}

func TestEvidenceMarkerClearsGap(t *testing.T) {
	a := Analyze("これは必ず正しいです（出典: 2024年の論文）。", DefaultWeights())

	if a.Scores.EvidenceGap != 0.0 {
		t.Fatalf("expected zero evidence gap with a marker present, got %v", a.Scores.EvidenceGap)
	}
	if !a.Notes.HasEvidence {
		t.Fatal("expected has_evidence=true")
	}
}

func TestContradictionRequiresBothMembers(t *testing.T) {
	solo := Analyze("It always works.", DefaultWeights())
	if solo.Counts.Contradictions != 0 {
		t.Fatalf("expected no contradiction for a lone phrase, got %d", solo.Counts.Contradictions)
	}

	pair := Analyze("It always works, though sometimes it does not.", DefaultWeights())
	if pair.Counts.Contradictions != 1 {
		t.Fatalf("expected 1 contradiction, got %d", pair.Counts.Contradictions)
	}
}

func TestAnalyzeCriticalTriggersRegenerate(t *testing.T) {
	text := "必ず 絶対 間違いなく 確実 100% definitely absolutely certainly " +
		"always sometimes never occasionally バカ stupid useless idiot trash"
	a := Analyze(text, DefaultWeights())

	if a.Level != LevelCritical {
		t.Fatalf("expected critical, got %s (post_d=%v)", a.Level, a.PostD)
	}
	if a.Action != ActionRegenerate {
		t.Fatalf("expected regenerate, got %s", a.Action)
	}
	if want := math.Max(0.3, 1.0-a.PostD*0.7); a.PsiModifier != want {
		t.Fatalf("psi modifier mismatch: got %v want %v", a.PsiModifier, want)
	}
}

func TestPsiModifierFloor(t *testing.T) {
	for _, postD := range []float64{0.0, 0.5, 0.99, 1.0} {
		got := math.Max(0.3, 1.0-postD*0.7)
		if got < 0.3 {
			t.Fatalf("psi modifier below floor for post_d=%v: %v", postD, got)
		}
	}
}

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		postD  float64
		level  string
		action string
	}{
		{0.0, LevelHealthy, ActionPass},
		{0.29, LevelHealthy, ActionPass},
		{0.30, LevelCautious, ActionAnnotate},
		{0.50, LevelDegraded, ActionSoften},
		{0.69, LevelDegraded, ActionSoften},
		{0.70, LevelCritical, ActionRegenerate},
	}
	for _, tc := range cases {
		level, action := classify(tc.postD)
		if level != tc.level || action != tc.action {
			t.Fatalf("classify(%v) = (%s, %s), want (%s, %s)",
				tc.postD, level, action, tc.level, tc.action)
		}
	}
}

func TestSoftenJapaneseTable(t *testing.T) {
	got := Soften("これは必ず成功し、絶対に安全です。")
	want := "これは多くの場合成功し、ほぼ安全です。"
	if got != want {
		t.Fatalf("soften: got %q want %q", got, want)
	}
}

func TestSoftenEnglishCaseInsensitivePreservesCasing(t *testing.T) {
	got := Soften("This Is Definitely correct and ALWAYS Works.")
	want := "This Is likely correct and typically Works."
	if got != want {
		t.Fatalf("soften: got %q want %q", got, want)
	}
}

func TestSoftenMixedLanguage(t *testing.T) {
	got := Soften("Certainly 必ず動作します。")
	want := "probably 多くの場合動作します。"
	if got != want {
		t.Fatalf("soften: got %q want %q", got, want)
	}
}

func TestSoftenKeepsRunesWithWiderLowerCase(t *testing.T) {
	// İ (U+0130) lower-cases to two bytes and the Kelvin sign (U+212A) to
	// one; neither may shift the offsets of later substitutions.
	got := Soften("İt is definitely 300 K")
	want := "İt is likely 300 K"
	if got != want {
		t.Fatalf("soften: got %q want %q", got, want)
	}

	got = Soften("300K is absolutely hot")
	want = "300K is very likely hot"
	if got != want {
		t.Fatalf("soften: got %q want %q", got, want)
	}
}
