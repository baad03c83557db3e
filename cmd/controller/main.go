package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/danielpatrickdp/integrity-gate/internal/config"
	"github.com/danielpatrickdp/integrity-gate/internal/engine"
	"github.com/danielpatrickdp/integrity-gate/internal/llm"
	"github.com/danielpatrickdp/integrity-gate/internal/logging"
	"github.com/danielpatrickdp/integrity-gate/internal/orchestrator"
	"github.com/danielpatrickdp/integrity-gate/internal/state"
)

// #region main

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	instanceDir := config.InstanceDir()
	cfg, err := config.Load(instanceDir)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	store, err := state.NewFileStore(instanceDir)
	if err != nil {
		slog.Error("open state store", "err", err)
		os.Exit(1)
	}

	archive, err := logging.NewArchive(filepath.Join(instanceDir, "provenance.db"))
	if err != nil {
		slog.Error("open provenance archive", "err", err)
		os.Exit(1)
	}
	defer archive.Close()

	eng, err := engine.New(store, archive)
	if err != nil {
		slog.Error("init engine", "err", err)
		os.Exit(1)
	}

	name, model := cfg.ResolveAdapter()
	adapter, err := llm.New(name, model)
	if err != nil {
		slog.Error("init adapter", "err", err)
		os.Exit(1)
	}

	orch := orchestrator.New(adapter, eng, cfg)

	fmt.Println("Integrity Gate ready.")
	fmt.Printf("  instance: %s | adapter: %s (%s)\n", instanceDir, adapter.Name(), adapter.Model())
	fmt.Println("Type a prompt, or /help for commands ('quit' to exit):")

	repl(orch, eng)
}

// #endregion main

// #region repl

func repl(orch *orchestrator.Orchestrator, eng *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	domain := "general"
	var lastSession string

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if strings.HasPrefix(line, "/") {
			runCommand(line, eng, &domain, lastSession)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		res, err := orch.Process(ctx, line, domain, nil, 0)
		cancel()
		if err != nil {
			if ge, ok := llm.AsGenerationError(err); ok {
				slog.Error("generation failed", "kind", ge.Kind, "detail", ge.Detail)
			} else {
				slog.Error("turn failed", "err", err)
			}
			continue
		}

		fmt.Printf("\n%s\n\n", res.Response)

		if res.SessionID == nil {
			fmt.Printf("[cool-down] risk=%s pre_d=%.3f\n", res.InputAnalysis.RiskLevel, res.InputAnalysis.PreD)
			continue
		}
		lastSession = *res.SessionID
		fmt.Printf("[%s] verdict=%s (%s) psi=%.3f risk=%s/%s attempts=%d temp=%.2f\n",
			shortID(lastSession), res.Evaluation.Verdict, res.Evaluation.VerdictJA,
			res.Evaluation.Integrity, res.InputAnalysis.RiskLevel, res.OutputAnalysis.Level,
			res.Attempts, res.TemperatureUsed)
	}
}

// #endregion repl

// #region commands

// runCommand handles the slash commands.
func runCommand(line string, eng *engine.Engine, domain *string, lastSession string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/help":
		fmt.Println("  /status                      engine snapshot")
		fmt.Println("  /logs [n]                    recent session logs")
		fmt.Println("  /patrol                      run a manual patrol pass")
		fmt.Println("  /feedback <good|bad|recalculate> [session]")
		fmt.Println("  /domain <name>               switch evaluation domain")
		fmt.Println("  /reset                       reset engine state")
	case "/status":
		printJSON(eng.CurrentStatus())
	case "/logs":
		limit := 10
		if len(fields) > 1 {
			fmt.Sscanf(fields[1], "%d", &limit)
		}
		printJSON(eng.RecentLogs(limit))
	case "/patrol":
		res, err := eng.Patrol(true)
		if err != nil {
			slog.Error("patrol", "err", err)
			return
		}
		printJSON(res)
	case "/feedback":
		if len(fields) < 2 {
			fmt.Println("usage: /feedback <good|bad|recalculate> [session]")
			return
		}
		session := lastSession
		if len(fields) > 2 {
			session = fields[2]
		}
		if session == "" {
			fmt.Println("no session to vote on yet")
			return
		}
		res, err := eng.RecordFeedback(session, *domain, fields[1])
		if err != nil {
			slog.Error("feedback", "err", err)
			return
		}
		fmt.Printf("feedback %s: reward=%+.1f weight[%s]=%.4f\n", res.Status, res.Reward, res.Domain, res.NewWeight)
	case "/domain":
		if len(fields) < 2 {
			fmt.Printf("current domain: %s\n", *domain)
			return
		}
		*domain = fields[1]
		fmt.Printf("domain set to %s\n", *domain)
	case "/reset":
		if err := eng.Reset(); err != nil {
			slog.Error("reset", "err", err)
			return
		}
		fmt.Println("engine state reset")
	default:
		fmt.Printf("unknown command %s (try /help)\n", fields[0])
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("marshal", "err", err)
		return
	}
	fmt.Println(string(data))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion commands
