package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"

	"github.com/danielpatrickdp/integrity-gate/internal/engine"
	"github.com/danielpatrickdp/integrity-gate/internal/logging"
	"github.com/danielpatrickdp/integrity-gate/internal/state"
)

// #region main

func main() {
	instance := flag.String("instance", "", "path to the instance directory")
	last := flag.Int("last", 20, "show N most recent session logs")
	session := flag.String("session", "", "show archived detail for one session")
	archived := flag.Bool("archive", false, "list from the provenance archive instead of the state file")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn})))

	if *instance == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --instance path/to/instance [--last N] [--session id] [--archive] [--json]")
		os.Exit(2)
	}

	store, err := state.NewFileStore(*instance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open state store: %v\n", err)
		os.Exit(1)
	}
	eng, err := engine.New(store, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init engine: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *session != "":
		err = runSessionMode(*instance, *session, *jsonOut)
	case *archived:
		err = runArchiveMode(*instance, *last, *jsonOut)
	default:
		err = runStatusMode(eng, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region status-mode

func runStatusMode(eng *engine.Engine, last int, jsonOut bool) error {
	st := eng.CurrentStatus()
	logs := eng.RecentLogs(last)

	if jsonOut {
		return printJSON(struct {
			Status engine.Status           `json:"status"`
			Logs   []state.SessionLogEntry `json:"logs"`
		}{st, logs})
	}

	fmt.Printf("sessions=%d k=%.3f eta=%.4f avg_d=%.3f next_patrol_in=%d\n",
		st.TotalSessions, st.K, st.Eta, st.AvgDeviation, st.ToNextPatrol)
	for verdict, n := range st.VerdictDistribution {
		fmt.Printf("  %-9s %4d (%.1f%%)\n", verdict, n, st.VerdictPercentages[verdict]*100)
	}
	for _, dw := range st.Domains {
		fmt.Printf("  domain %-16s weight=%.4f\n", dw.Domain, dw.Weight)
	}
	if len(logs) == 0 {
		fmt.Fprintln(os.Stderr, "no session logs")
		return nil
	}
	fmt.Printf("\n%-9s %-22s %-12s %7s %7s %7s  %s\n", "session", "time", "domain", "d", "temp", "psi", "verdict")
	for _, e := range logs {
		fmt.Printf("%-9s %-22s %-12s %7.3f %7.3f %7.3f  %s\n",
			shortID(e.SessionID), e.Timestamp, e.Domain, e.D, e.T, e.Psi, e.Verdict)
	}
	return nil
}

// #endregion status-mode

// #region archive-mode

func runArchiveMode(instance string, last int, jsonOut bool) error {
	archive, err := logging.NewArchive(filepath.Join(instance, "provenance.db"))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()

	recs, err := archive.RecentEvaluations(last)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "archive is empty")
		return nil
	}
	for _, r := range recs {
		fmt.Printf("%-9s %-22s %-12s d=%.3f psi=%.3f %s\n",
			shortID(r.SessionID), r.CreatedAt.Format(time.RFC3339), r.Domain, r.D, r.Psi, r.Verdict)
	}
	return nil
}

func runSessionMode(instance, session string, jsonOut bool) error {
	archive, err := logging.NewArchive(filepath.Join(instance, "provenance.db"))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()

	votes, err := archive.FeedbackForSession(session)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(votes)
	}
	if len(votes) == 0 {
		fmt.Fprintln(os.Stderr, "no feedback recorded for session")
		return nil
	}
	for _, v := range votes {
		fmt.Printf("%-22s %-12s %s reward=%+.1f weight=%.4f\n",
			v.CreatedAt.Format(time.RFC3339), v.Domain, v.Feedback, v.Reward, v.NewWeight)
	}
	return nil
}

// #endregion archive-mode

// #region helpers

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion helpers
