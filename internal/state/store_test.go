package state

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "instance"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return fs
}

func TestLoadCreatesDefaults(t *testing.T) {
	fs := tempStore(t)

	st, err := fs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.K != 1.5 || st.Eta != 0.01 || st.TBase != 0.8 {
		t.Fatalf("unexpected default gains: k=%v eta=%v T_base=%v", st.K, st.Eta, st.TBase)
	}
	if st.KMin != 0.5 || st.KMax != 5.0 || st.EtaMin != 0.001 || st.EtaMax != 0.1 {
		t.Fatalf("unexpected default bounds")
	}
	if st.TotalSessions != 0 {
		t.Fatalf("expected zero sessions, got %d", st.TotalSessions)
	}
	if _, err := os.Stat(fs.Path()); err != nil {
		t.Fatalf("state file not created: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := tempStore(t)

	st, err := fs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	st.K = 2.25
	st.Eta = 0.05
	st.TotalSessions = 42
	st.SetDomainWeight("medical", 1.07)
	st.UsedSessionIDs["sess-1"] = "2026-01-01T00:00:00Z"
	reward := 1.0
	fb := "good"
	st.AppendSessionLog(SessionLogEntry{
		SessionID: "sess-1", Timestamp: "2026-01-01T00:00:00Z", Domain: "medical",
		D: 0.12, T: 0.74, Psi: 1.31, Verdict: "reliable", Reward: &reward, Feedback: &fb,
	})

	if err := fs.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got.K != 2.25 || got.Eta != 0.05 || got.TotalSessions != 42 {
		t.Fatalf("round trip lost gains/counter: %+v", got)
	}
	if got.DomainWeight("medical") != 1.07 {
		t.Fatalf("round trip lost domain weight: %v", got.DomainWeight("medical"))
	}
	if _, ok := got.UsedSessionIDs["sess-1"]; !ok {
		t.Fatal("round trip lost used session id")
	}
	if len(got.SessionLogs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(got.SessionLogs))
	}
	entry := got.SessionLogs[0]
	if entry.Reward == nil || *entry.Reward != 1.0 {
		t.Fatalf("round trip lost reward: %+v", entry.Reward)
	}
	if entry.Feedback == nil || *entry.Feedback != "good" {
		t.Fatalf("round trip lost feedback: %+v", entry.Feedback)
	}
}

func TestLoadCorruptFileFallsBackToDefaults(t *testing.T) {
	fs := tempStore(t)
	if _, err := fs.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := os.WriteFile(fs.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("corrupt write: %v", err)
	}

	st, err := fs.Load()
	if err != nil {
		t.Fatalf("Load after corruption: %v", err)
	}
	if st.K != 1.5 || st.TotalSessions != 0 {
		t.Fatalf("expected defaults after corruption, got %+v", st)
	}
}

func TestSaveRestrictsPermissions(t *testing.T) {
	fs := tempStore(t)
	if _, err := fs.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	info, err := os.Stat(fs.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 state file, got %o", perm)
	}
}

func TestAppendSessionLogCap(t *testing.T) {
	st := DefaultState()
	for i := 0; i < MaxSessionLogs+250; i++ {
		st.AppendSessionLog(SessionLogEntry{SessionID: sid(i)})
	}
	if len(st.SessionLogs) != MaxSessionLogs {
		t.Fatalf("expected %d entries, got %d", MaxSessionLogs, len(st.SessionLogs))
	}
	// Oldest evicted: first remaining entry must be #250.
	if st.SessionLogs[0].SessionID != sid(250) {
		t.Fatalf("expected oldest entry %s, got %s", sid(250), st.SessionLogs[0].SessionID)
	}
	if st.SessionLogs[MaxSessionLogs-1].SessionID != sid(MaxSessionLogs+249) {
		t.Fatal("expected newest entry preserved in order")
	}
}

func sid(i int) string {
	return fmt.Sprintf("sess-%d", i)
}

func TestClampGains(t *testing.T) {
	st := DefaultState()
	st.K = 99
	st.Eta = -1
	st.ClampGains()
	if st.K != st.KMax {
		t.Fatalf("expected k clamped to %v, got %v", st.KMax, st.K)
	}
	if st.Eta != st.EtaMin {
		t.Fatalf("expected eta clamped to %v, got %v", st.EtaMin, st.Eta)
	}
}
