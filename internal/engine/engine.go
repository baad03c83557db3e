// Package engine implements the integrity engine: deviation/temperature/
// integrity scoring over structured evaluation requests, idempotent feedback
// application onto per-domain weights, and the patrol self-tuning loop.
package engine

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/integrity-gate/internal/logging"
	"github.com/danielpatrickdp/integrity-gate/internal/state"
)

// patrolInterval is the session count between automatic patrol passes.
const patrolInterval = 10

// #region engine-struct
// Engine owns the durable engine state. All read-modify-write sequences hold
// mu across load, mutate, and save, so concurrent callers cannot break the
// exactly-once feedback or monotonic session-counter invariants.
type Engine struct {
	mu      sync.Mutex
	store   *state.FileStore
	st      *state.State
	archive *logging.Archive // optional; nil disables the audit trail
}
// #endregion engine-struct

// #region constructor
// New loads (or initializes) the engine state. archive may be nil.
func New(store *state.FileStore, archive *logging.Archive) (*Engine, error) {
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, st: st, archive: archive}, nil
}
// #endregion constructor

// #region evaluate
// Evaluate validates the request, computes deviation, temperature, and
// integrity, appends a session log entry, and persists. Every 10th session
// triggers an inline patrol pass before the result is assembled, so the
// returned meta reflects any gain adjustment.
func (e *Engine) Evaluate(req EvaluationRequest) (Result, error) {
	domain := strings.TrimSpace(req.Context.Domain)
	if domain == "" {
		return Result{}, &Error{Kind: KindInvalidPayload, Detail: "context.domain is required"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	d := euclideanDistance(req.Inference, req.Evidence)
	cms := contextMatchScore(req.Context)
	purity := purityScore(req.Context, cms)
	alpha := 1.0 + cms*0.2
	beta := betaScore(purity)
	temp := math.Max(0.1, e.st.TBase*math.Exp(-e.st.K*d))
	psi := alpha * beta / temp
	verdict, verdictJA := verdictFromPsi(psi)
	confAdj := confidenceAdjusted(req.Context.Confidence, psi)

	sessionID := uuid.NewString()
	ts := time.Now().UTC().Format(time.RFC3339)

	e.st.TotalSessions++
	e.st.AppendSessionLog(state.SessionLogEntry{
		SessionID: sessionID,
		Timestamp: ts,
		Domain:    domain,
		D:         d,
		T:         temp,
		Psi:       psi,
		Verdict:   verdict,
	})
	if err := e.store.Save(e.st); err != nil {
		return Result{}, &Error{Kind: KindStateIO, Detail: "persist evaluation", Err: err}
	}

	if e.st.TotalSessions%patrolInterval == 0 {
		if _, err := e.patrolLocked(false); err != nil {
			return Result{}, err
		}
	}

	if e.archive != nil {
		err := e.archive.RecordEvaluation(logging.EvaluationRecord{
			SessionID: sessionID, Domain: domain,
			D: d, T: temp, Psi: psi, Verdict: verdict,
		})
		if err != nil {
			slog.Warn("archive write failed", "session_id", sessionID, "error", err)
		}
	}

	return Result{
		SessionID:          sessionID,
		Deviation:          d,
		Temperature:        temp,
		Integrity:          psi,
		ConfidenceAdjusted: confAdj,
		Verdict:            verdict,
		VerdictJA:          verdictJA,
		Meta: Meta{
			K:                 e.st.K,
			Eta:               e.st.Eta,
			TotalSessions:     e.st.TotalSessions,
			DomainWeight:      e.st.DomainWeight(domain),
			ContextMatchScore: cms,
			Purity:            purity,
			Alpha:             alpha,
			Beta:              beta,
		},
	}, nil
}
// #endregion evaluate

// #region record-feedback
// RecordFeedback applies one feedback vote to the domain weight. A session ID
// already in the dedup ledger yields duplicate_ignored with no weight change:
// idempotence by construction, not by replaying the original result.
func (e *Engine) RecordFeedback(sessionID, domain, feedback string) (FeedbackResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	domain = strings.TrimSpace(domain)
	if sessionID == "" {
		return FeedbackResult{}, &Error{Kind: KindMissingField, Detail: "session_id is required"}
	}
	if domain == "" {
		return FeedbackResult{}, &Error{Kind: KindMissingField, Detail: "domain is required"}
	}
	var reward float64
	switch feedback {
	case FeedbackGood:
		reward = 1.0
	case FeedbackBad:
		reward = -1.0
	case FeedbackRecalculate:
		reward = 0.3
	default:
		return FeedbackResult{}, &Error{Kind: KindMissingField, Detail: "feedback must be good, bad, or recalculate"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, used := e.st.UsedSessionIDs[sessionID]; used {
		return FeedbackResult{Status: StatusDuplicateIgnored, Domain: domain}, nil
	}

	e.st.UsedSessionIDs[sessionID] = time.Now().UTC().Format(time.RFC3339)
	newWeight := e.st.DomainWeight(domain) + e.st.Eta*reward
	e.st.SetDomainWeight(domain, newWeight)

	// Back-fill the most recent log entry for this session.
	for i := len(e.st.SessionLogs) - 1; i >= 0; i-- {
		if e.st.SessionLogs[i].SessionID == sessionID {
			r := reward
			fb := feedback
			e.st.SessionLogs[i].Reward = &r
			e.st.SessionLogs[i].Feedback = &fb
			break
		}
	}

	if err := e.store.Save(e.st); err != nil {
		return FeedbackResult{}, &Error{Kind: KindStateIO, Detail: "persist feedback", Err: err}
	}

	if e.archive != nil {
		err := e.archive.RecordFeedback(logging.FeedbackRecord{
			SessionID: sessionID, Domain: domain, Feedback: feedback,
			Reward: reward, NewWeight: newWeight,
		})
		if err != nil {
			slog.Warn("archive write failed", "session_id", sessionID, "error", err)
		}
	}

	return FeedbackResult{
		Status:    StatusRecorded,
		Reward:    reward,
		NewWeight: newWeight,
		Domain:    domain,
	}, nil
}
// #endregion record-feedback

// #region patrol
// Patrol runs one self-tuning pass over the recent log window.
func (e *Engine) Patrol(manual bool) (PatrolResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.patrolLocked(manual)
}

// patrolLocked examines the last 10 log entries and adjusts k and eta by the
// rule table. The four rules are evaluated independently and their effects
// compound; the final gains are clamped to the configured bounds.
func (e *Engine) patrolLocked(manual bool) (PatrolResult, error) {
	if len(e.st.SessionLogs) == 0 {
		return PatrolResult{
			Adjusted: false,
			Reason:   "no_change",
			NewK:     e.st.K,
			NewEta:   e.st.Eta,
			Manual:   manual,
		}, nil
	}

	window := e.st.SessionLogs
	if len(window) > patrolInterval {
		window = window[len(window)-patrolInterval:]
	}

	var sumD, sumPsi, sumR float64
	for _, entry := range window {
		sumD += entry.D
		sumPsi += entry.Psi
		if entry.Reward != nil {
			sumR += *entry.Reward
		}
	}
	avgD := sumD / float64(len(window))
	avgPsi := sumPsi / float64(len(window))

	k := e.st.K
	eta := e.st.Eta
	adjusted := false
	var reasons []string

	if avgD > 0.3 && sumR < 0 {
		k += 0.1
		eta *= 1.05
		adjusted = true
		reasons = append(reasons, "avgD>0.3 & sumR<0 -> strictify")
	}
	if avgD < 0.1 && sumR > 0 {
		k -= 0.05
		adjusted = true
		reasons = append(reasons, "avgD<0.1 & sumR>0 -> relax")
	}
	if avgD > 0.3 && sumR > 0 {
		eta *= 1.02
		adjusted = true
		reasons = append(reasons, "avgD>0.3 & sumR>0 -> learn faster")
	}
	if avgPsi < 0.5 {
		k += 0.05
		adjusted = true
		reasons = append(reasons, "avgPsi<0.5 -> tighten")
	}

	e.st.K = k
	e.st.Eta = eta
	e.st.ClampGains()

	if err := e.store.Save(e.st); err != nil {
		return PatrolResult{}, &Error{Kind: KindStateIO, Detail: "persist patrol", Err: err}
	}

	reason := "no_change"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}
	slog.Info("patrol pass",
		"manual", manual, "adjusted", adjusted, "reason", reason,
		"k", e.st.K, "eta", e.st.Eta)

	return PatrolResult{
		Adjusted: adjusted,
		Reason:   reason,
		NewK:     e.st.K,
		NewEta:   e.st.Eta,
		Window: WindowStats{
			AvgD:       avgD,
			SumR:       sumR,
			AvgPsi:     avgPsi,
			WindowSize: len(window),
		},
		Manual: manual,
	}, nil
}
// #endregion patrol

// #region status
// CurrentStatus snapshots the engine for operators: gains, session counts,
// recent deviation, verdict distribution, and sorted domain weights.
func (e *Engine) CurrentStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	recent := e.st.SessionLogs
	if len(recent) > 200 {
		recent = recent[len(recent)-200:]
	}

	var avgD float64
	dist := map[string]int{VerdictReliable: 0, VerdictModerate: 0, VerdictSuspect: 0}
	if len(recent) > 0 {
		var sumD float64
		for _, entry := range recent {
			sumD += entry.D
			if _, ok := dist[entry.Verdict]; ok {
				dist[entry.Verdict]++
			}
		}
		avgD = sumD / float64(len(recent))
	}

	total := dist[VerdictReliable] + dist[VerdictModerate] + dist[VerdictSuspect]
	if total == 0 {
		total = 1
	}
	pct := make(map[string]float64, len(dist))
	for v, c := range dist {
		pct[v] = float64(c) / float64(total)
	}

	toNext := patrolInterval - int(e.st.TotalSessions%patrolInterval)
	if e.st.TotalSessions%patrolInterval == 0 {
		toNext = patrolInterval
	}

	domains := make([]DomainWeight, 0, len(e.st.Domains))
	for d, w := range e.st.Domains {
		domains = append(domains, DomainWeight{Domain: d, Weight: w})
	}
	sort.Slice(domains, func(i, j int) bool {
		if domains[i].Weight != domains[j].Weight {
			return domains[i].Weight > domains[j].Weight
		}
		return domains[i].Domain < domains[j].Domain
	})

	return Status{
		K:                   e.st.K,
		Eta:                 e.st.Eta,
		TotalSessions:       e.st.TotalSessions,
		AvgDeviation:        avgD,
		ToNextPatrol:        toNext,
		Domains:             domains,
		VerdictDistribution: dist,
		VerdictPercentages:  pct,
		KRange:              [2]float64{e.st.KMin, e.st.KMax},
		EtaRange:            [2]float64{e.st.EtaMin, e.st.EtaMax},
	}
}
// #endregion status

// #region logs
// RecentLogs returns up to limit session log entries, newest first.
func (e *Engine) RecentLogs(limit int) []state.SessionLogEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	logs := e.st.SessionLogs
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	out := make([]state.SessionLogEntry, len(logs))
	for i, entry := range logs {
		out[len(logs)-1-i] = entry
	}
	return out
}
// #endregion logs

// #region reset
// Reset discards all learned state and persists fresh defaults.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := state.DefaultState()
	if err := e.store.Save(st); err != nil {
		return &Error{Kind: KindStateIO, Detail: "persist reset", Err: err}
	}
	e.st = st
	return nil
}
// #endregion reset

// #region math
// euclideanDistance runs over the intersection of inference and evidence keys,
// falling back to the union when the intersection is empty.
func euclideanDistance(inference map[string]float64, evidence map[string]Evidence) float64 {
	var keys []string
	for k := range inference {
		if _, ok := evidence[k]; ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		seen := map[string]bool{}
		for k := range inference {
			seen[k] = true
			keys = append(keys, k)
		}
		for k := range evidence {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
	}

	var sum float64
	for _, k := range keys {
		diff := inference[k] - evidence[k].Median
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

func contextMatchScore(ctx Context) float64 {
	score := clamp01(ctx.Confidence)
	if ctx.DomainKnown {
		score = math.Min(1.0, score+0.10)
	}
	score -= 0.03 * float64(ctx.MissingFields)
	score -= 0.04 * float64(ctx.Warnings)
	return clamp01(score)
}

func purityScore(ctx Context, cms float64) float64 {
	if !ctx.DomainKnown {
		return clamp01(cms * 0.90)
	}
	return cms
}

func betaScore(purity float64) float64 {
	if purity > 0.8 {
		return 1.0
	}
	return math.Max(0.5, purity)
}

func verdictFromPsi(psi float64) (string, string) {
	switch {
	case psi >= 1.2:
		return VerdictReliable, "信頼できる"
	case psi >= 0.8:
		return VerdictModerate, "ふつう"
	default:
		return VerdictSuspect, "あやしい"
	}
}

func confidenceAdjusted(conf, psi float64) float64 {
	factor := math.Max(0.6, math.Min(1.25, psi/1.2))
	return clamp01(clamp01(conf) * factor)
}

func clamp01(x float64) float64 {
	return math.Max(0.0, math.Min(1.0, x))
}
// #endregion math
