// Package outputgate scores generated text for unsupported assertion density,
// evidence gaps, self-contradiction, and provocative language, and applies
// the softening rewrite when the pipeline asks for it.
package outputgate

import (
	"math"
	"strings"
	"unicode/utf8"
)

// evidenceGapSaturation is the forced hit count when assertive claims appear
// with no evidence marker: an unsupported assertion is a maximal gap, not a
// partial one.
const evidenceGapSaturation = 5

// #region analyze
// Analyze scores the text per category, combines the scores into post_d, and
// maps post_d to a health level with its action and psi modifier.
func Analyze(text string, w Weights) Analysis {
	t := strings.TrimSpace(text)

	assertCount := countHits(t, assertTokens)
	provCount := countHits(t, provocativeTokens)
	contraHits := contradictionHits(t)
	hasEvidence := countHits(t, evidenceMarkers) > 0

	gapCount := 0
	if assertCount > 0 && !hasEvidence {
		gapCount = evidenceGapSaturation
	}

	scores := Scores{
		AssertionDensity: saturate(assertCount, 1.4),
		EvidenceGap:      saturate(gapCount, 1.2),
		Contradiction:    saturate(contraHits, 1.5),
		Provocative:      saturate(provCount, 1.3),
	}

	postD := scores.AssertionDensity*w.Assertion +
		scores.EvidenceGap*w.Evidence +
		scores.Contradiction*w.Contradiction +
		scores.Provocative*w.Provocative

	// The floor keeps a terrible response from zeroing out confidence entirely.
	psiMod := math.Max(0.3, 1.0-postD*0.7)

	level, action := classify(postD)

	return Analysis{
		Scores:      scores,
		PostD:       postD,
		Level:       level,
		Action:      action,
		PsiModifier: psiMod,
		Counts: Counts{
			Assertions:     assertCount,
			Contradictions: contraHits,
			Provocative:    provCount,
		},
		Notes: Notes{HasEvidence: hasEvidence},
	}
}
// #endregion analyze

// #region soften
// Soften rewrites confident phrasing into hedged phrasing: the Japanese table
// is applied verbatim, the English table case-insensitively. Characters not
// covered by a substitution keep their original casing.
func Soften(text string) string {
	out := text
	for _, p := range softenJA {
		out = strings.ReplaceAll(out, p[0], p[1])
	}
	for _, p := range softenEN {
		out = replaceFold(out, p[0], p[1])
	}
	return out
}
// #endregion soften

// #region helpers
func classify(postD float64) (level, action string) {
	switch {
	case postD >= 0.70:
		return LevelCritical, ActionRegenerate
	case postD >= 0.50:
		return LevelDegraded, ActionSoften
	case postD >= 0.30:
		return LevelCautious, ActionAnnotate
	default:
		return LevelHealthy, ActionPass
	}
}

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

func contradictionHits(text string) int {
	t := strings.ToLower(text)
	hits := 0
	for _, p := range contradictionPairs {
		if strings.Contains(t, strings.ToLower(p[0])) && strings.Contains(t, strings.ToLower(p[1])) {
			hits++
		}
	}
	return hits
}

// replaceFold replaces every case-insensitive occurrence of from with to,
// leaving the rest of the string untouched. Matching walks the original
// string rune by rune, so runes whose lower-case form has a different byte
// length (İ, the Kelvin sign) never shift later offsets.
func replaceFold(s, from, to string) string {
	if from == "" {
		return s
	}
	n := utf8.RuneCountInString(from)
	var b strings.Builder
	for i := 0; i < len(s); {
		end := i
		count := 0
		for end < len(s) && count < n {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			count++
		}
		if count == n && strings.EqualFold(s[i:end], from) {
			b.WriteString(to)
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}
// #endregion helpers
