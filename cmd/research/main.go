package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"go-research/internal/agent"
	"go-research/internal/config"
	"go-research/internal/events"
)

func main() {
	cfg := config.Load()

	if cfg.OpenRouterAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: OPENROUTER_API_KEY environment variable not set")
		os.Exit(1)
	}
	if cfg.BraveAPIKey == "" {
		fmt.Fprintln(os.Stderr, "Error: BRAVE_API_KEY environment variable not set")
		os.Exit(1)
	}

	effortFlag := flag.String("effort", cfg.DefaultEffort, "effort level: standard, deep, or max")
	flag.Parse()
	query := strings.Join(flag.Args(), " ")

	if query == "" {
		rl, err := readline.New(color.CyanString("research> "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating prompt: %v\n", err)
			os.Exit(1)
		}
		defer rl.Close()

		line, err := rl.Readline()
		if err != nil {
			fmt.Fprintln(os.Stderr, "no query provided")
			os.Exit(1)
		}
		query = strings.TrimSpace(line)
	}

	if query == "" {
		fmt.Fprintln(os.Stderr, "no query provided")
		os.Exit(1)
	}

	bus := events.NewBus(100)
	defer bus.Close()

	engine := agent.New(agent.EngineConfig{
		Model:            cfg.Model,
		MaxOutputTokens:  cfg.MaxOutputTokens,
		OpenRouterAPIKey: cfg.OpenRouterAPIKey,
		BraveAPIKey:      cfg.BraveAPIKey,
		RequestTimeout:   cfg.RequestTimeout,
	}, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	result, err := engine.ResearchAsync(ctx, query, agent.Options{
		Effort:     agent.Level(*effortFlag),
		OnProgress: printProgress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if result.Cancelled {
		color.Yellow("research cancelled")
		return
	}

	fmt.Println()
	fmt.Println(result.Synthesis)
	color.Green("\nrun %s: %d sources, quality %.2f, %dms, $%.4f (%d tokens)",
		result.RunID, len(result.Sources), result.Quality, result.Stats.DurationMs,
		result.Stats.Cost.TotalCost, result.Stats.Cost.TotalTokens)
}

func printProgress(ev events.Event) {
	switch ev.Type {
	case events.EventPhaseStarted:
		if d, ok := ev.Data.(events.PhaseStartedData); ok {
			color.Cyan("[%s] %s", d.Phase, d.Message)
		}
	case events.EventProgressUpdate:
		if d, ok := ev.Data.(events.ProgressUpdateData); ok {
			fmt.Printf("progress %.0f%% — %d sources, %d scraped, step %d/%d\n",
				d.Progress*100, d.Stats.SourcesFound, d.Stats.SourcesProcessed, d.Stats.StepsCompleted, d.Stats.TotalSteps)
		}
	case events.EventFindingDiscovered:
		if d, ok := ev.Data.(events.FindingDiscoveredData); ok {
			color.Magenta("finding: %s", d.Finding)
		}
	case events.EventCompleted:
		if d, ok := ev.Data.(events.CompletedData); ok {
			color.Green("completed in %dms, quality %.2f", d.TotalDurationMs, d.FinalQuality)
		}
	}
}
