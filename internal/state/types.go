package state

import "time"

// MaxSessionLogs caps the in-state session log; oldest entries are evicted first.
const MaxSessionLogs = 2000

// #region session-log-entry
// SessionLogEntry records one evaluation outcome. Reward and Feedback stay nil
// until matching feedback arrives, and are written at most once.
type SessionLogEntry struct {
	SessionID string   `json:"session_id"`
	Timestamp string   `json:"ts"`
	Domain    string   `json:"domain"`
	D         float64  `json:"D"`
	T         float64  `json:"T"`
	Psi       float64  `json:"psi"`
	Verdict   string   `json:"verdict"`
	Reward    *float64 `json:"reward"`
	Feedback  *string  `json:"feedback"`
}
// #endregion session-log-entry

// #region state
// State is the durable engine singleton: control-loop gains with their bounds,
// learned per-domain weights, the capped session log, and the feedback dedup
// ledger. The JSON field names are the on-disk state file format.
type State struct {
	K     float64 `json:"k"`
	Eta   float64 `json:"eta"`
	TBase float64 `json:"T_base"`

	KMin   float64 `json:"k_min"`
	KMax   float64 `json:"k_max"`
	EtaMin float64 `json:"eta_min"`
	EtaMax float64 `json:"eta_max"`

	TotalSessions  uint64             `json:"total_sessions"`
	Domains        map[string]float64 `json:"domains"`
	UsedSessionIDs map[string]string  `json:"used_session_ids"`
	SessionLogs    []SessionLogEntry  `json:"session_logs"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
// #endregion state

// #region defaults
// DefaultState returns a fresh state with the standard gains and bounds.
func DefaultState() *State {
	now := time.Now().UTC().Format(time.RFC3339)
	return &State{
		K:              1.5,
		Eta:            0.01,
		TBase:          0.8,
		KMin:           0.5,
		KMax:           5.0,
		EtaMin:         0.001,
		EtaMax:         0.1,
		TotalSessions:  0,
		Domains:        map[string]float64{},
		UsedSessionIDs: map[string]string{},
		SessionLogs:    []SessionLogEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
// #endregion defaults

// #region domain-weight
// DomainWeight returns the learned weight for a domain, defaulting to 1.0.
func (s *State) DomainWeight(domain string) float64 {
	if w, ok := s.Domains[domain]; ok {
		return w
	}
	return 1.0
}

// SetDomainWeight stores a domain weight, allocating the map if needed.
func (s *State) SetDomainWeight(domain string, w float64) {
	if s.Domains == nil {
		s.Domains = map[string]float64{}
	}
	s.Domains[domain] = w
}
// #endregion domain-weight

// #region append-log
// AppendSessionLog appends an entry, evicting the oldest past MaxSessionLogs.
func (s *State) AppendSessionLog(entry SessionLogEntry) {
	s.SessionLogs = append(s.SessionLogs, entry)
	if n := len(s.SessionLogs); n > MaxSessionLogs {
		s.SessionLogs = s.SessionLogs[n-MaxSessionLogs:]
	}
}
// #endregion append-log

// #region clamp-gains
// ClampGains forces k and eta back inside their configured bounds.
func (s *State) ClampGains() {
	s.K = clamp(s.K, s.KMin, s.KMax)
	s.Eta = clamp(s.Eta, s.EtaMin, s.EtaMax)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
// #endregion clamp-gains
