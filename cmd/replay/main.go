package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/danielpatrickdp/integrity-gate/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to a JSON replay fixture")
	instance := flag.String("instance", "", "instance directory for the run (default: a temp dir)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of text")
	flag.Parse()

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelWarn})))

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--instance dir] [--json]")
		os.Exit(2)
	}

	fixture, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	dir := *instance
	if dir == "" {
		dir, err = os.MkdirTemp("", "replay-*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer os.RemoveAll(dir)
	}

	harness, err := replay.NewHarness(dir, fixture.Config.ToConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sum, results, err := harness.Run(ctx, fixture)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		printJSON(struct {
			Summary replay.Summary      `json:"summary"`
			Turns   []replay.TurnResult `json:"turns"`
		}{sum, results})
	} else {
		printText(fixture.Description, sum, results)
	}

	if sum.Mismatched > 0 {
		os.Exit(1)
	}
}

// #endregion main

// #region output

func printText(description string, sum replay.Summary, results []replay.TurnResult) {
	if description != "" {
		fmt.Printf("fixture: %s\n", description)
	}
	for _, r := range results {
		status := "ok"
		if len(r.Mismatches) > 0 {
			status = "MISMATCH"
		}
		session := "-"
		if r.SessionID != nil {
			session = shortID(*r.SessionID)
		}
		fmt.Printf("%-12s %-9s risk=%-9s action=%-10s verdict=%-9s %s\n",
			r.TurnID, session, r.RiskLevel, orDash(r.OutputAction), orDash(r.Verdict), status)
		for _, m := range r.Mismatches {
			fmt.Printf("    %s\n", m)
		}
	}
	fmt.Printf("\nturns=%d matched=%d mismatched=%d cool_downs=%d regenerated=%d\n",
		sum.TotalTurns, sum.Matched, sum.Mismatched, sum.CoolDowns, sum.Regenerated)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
