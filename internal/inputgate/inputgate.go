// Package inputgate scores raw user text for ambiguity, assertion demand,
// emotional pressure, and unrealistic expectation before any generation
// happens. Analyze is a pure function of text and weights.
package inputgate

import (
	"math"
	"strings"
)

// #region analyze
// Analyze scores the text per category, combines the scores into pre_d, and
// maps pre_d to a risk level with its pipeline action and temperature modifier.
func Analyze(text string, w Weights) Analysis {
	cAmb := countHits(text, ambiguityJA) + countHits(text, ambiguityEN)
	cAss := countHits(text, assertionJA) + countHits(text, assertionEN)
	cEmo := countHits(text, emotionJA) + countHits(text, emotionEN)
	cUnr := countHits(text, unrealisticJA) + countHits(text, unrealisticEN)

	// Exclamation marks boost the emotional-pressure count, capped at +3.
	if ex := strings.Count(text, "!") + strings.Count(text, "！"); ex > 0 {
		if ex > 3 {
			ex = 3
		}
		cEmo += ex
	}

	// Sensitivities are tuned so 1-2 strong tokens lift risk without
	// over-triggering on a single stray word.
	scores := Scores{
		Ambiguity:         saturate(cAmb, 1.1),
		AssertionDemand:   saturate(cAss, 1.8),
		EmotionalPressure: saturate(cEmo, 2.0),
		Unrealistic:       saturate(cUnr, 1.8),
	}

	preD := scores.Ambiguity*w.Ambiguity +
		scores.AssertionDemand*w.Assertion +
		scores.EmotionalPressure*w.Emotion +
		scores.Unrealistic*w.Unrealistic

	// Escalation: multiple simultaneous pressures interact.
	active := 0
	for _, c := range []int{cAmb, cAss, cEmo, cUnr} {
		if c > 0 {
			active++
		}
	}
	switch {
	case active >= 3:
		preD = math.Min(1.0, preD*1.25)
	case active == 2 && cEmo > 0 && (cAss > 0 || cUnr > 0):
		preD = math.Min(1.0, preD*1.10)
	}

	level, action, tMod := classify(preD)

	var warnings []string
	if cAmb > 0 {
		warnings = append(warnings, "曖昧な表現が含まれます")
	}
	if cAss > 0 {
		warnings = append(warnings, "断定要求が含まれます")
	}
	if cEmo > 0 {
		warnings = append(warnings, "感情的圧力が検出されました")
	}
	if cUnr > 0 {
		warnings = append(warnings, "非現実的な前提が含まれます")
	}

	return Analysis{
		Scores:              scores,
		PreD:                preD,
		RiskLevel:           level,
		Action:              action,
		TemperatureModifier: tMod,
		Warnings:            warnings,
	}
}
// #endregion analyze

// #region rebuild-prompt
// RebuildPrompt returns the effective prompt and a tag describing the rewrite.
// Critical input yields an empty prompt: the caller must short-circuit and
// never send it to the model.
func RebuildPrompt(text string, a Analysis) (string, string) {
	switch a.RiskLevel {
	case LevelCritical:
		return "", "critical"
	case LevelLow:
		return text, "none"
	case LevelModerate:
		return "[指針: 不確実な点は明記し、根拠を添えて回答してください。]\n" + text, "moderate"
	default:
		return "[重要指針: 断定を避け、根拠を明示し、不明な点は「わかりません」と答えてください。]\n" + text, "high"
	}
}
// #endregion rebuild-prompt

// #region helpers
func classify(preD float64) (level, action string, tMod float64) {
	switch {
	case preD >= 0.70:
		return LevelCritical, ActionCoolDown, 0.3
	case preD >= 0.50:
		return LevelHigh, ActionConditional, 0.5
	case preD >= 0.30:
		return LevelModerate, ActionClarify, 0.7
	default:
		return LevelLow, ActionProceed, 1.0
	}
}

// saturate maps a raw hit count to a bounded score via tanh(count/3 * sensitivity),
// so additional hits yield diminishing marginal risk.
func saturate(count int, sensitivity float64) float64 {
	return math.Tanh(float64(count) / 3.0 * sensitivity)
}

func countHits(text string, words []string) int {
	t := strings.ToLower(text)
	c := 0
	for _, w := range words {
		if w == "" {
			continue
		}
		c += strings.Count(t, strings.ToLower(w))
	}
	return c
}
// #endregion helpers
