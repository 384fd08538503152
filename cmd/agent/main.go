package main

// #region imports
import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/agroplan/crop-advisor/go-agent/internal/advisor"
	"github.com/agroplan/crop-advisor/go-agent/internal/agro"
	"github.com/agroplan/crop-advisor/go-agent/internal/dialogue"
	"github.com/agroplan/crop-advisor/go-agent/internal/session"
)

// #endregion

// #region main
func main() {
	dbPath := envOr("ADVISOR_DB", "advisor.db")

	store, err := session.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	agroCfg := agro.DefaultConfig()
	var gateway dialogue.Gateway
	if agroCfg.Enabled {
		gateway = agro.NewClient(agroCfg, nil)
	}

	st := session.NewState()
	ctrl := dialogue.NewController(st, gateway, store)
	ctx := context.Background()

	fmt.Println("Crop Advisor ready.")
	fmt.Printf("  DB: %s | Session: %s | Agro: %s\n", dbPath, shortID(st.ID), agroStatus(agroCfg))
	fmt.Println("Describe what you want to grow (or 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}
		if text == "log" {
			for _, line := range st.LogLines() {
				fmt.Println(line)
			}
			continue
		}

		resp := ctrl.HandleUserInput(ctx, text)
		if resp.Type == "followup" {
			resp = collectAnswers(ctx, ctrl, scanner, resp.Questions)
		}
		if resp.Final != nil {
			printFinal(resp.Final)
		}
	}
}

// #endregion main

// #region answers

// collectAnswers prompts for each outstanding question in order and
// submits the mapping in one batch.
func collectAnswers(ctx context.Context, ctrl *dialogue.Controller, scanner *bufio.Scanner, questions []string) dialogue.Response {
	fmt.Printf("\nI need %d more detail(s):\n", len(questions))
	answers := make(map[string]any, len(questions))
	for i, q := range questions {
		fmt.Printf("  %d. %s\n  > ", i+1, q)
		if !scanner.Scan() {
			break
		}
		answers[q] = strings.TrimSpace(scanner.Text())
	}
	return ctrl.ProvideFollowupAnswers(ctx, answers)
}

// #endregion answers

// #region output

func printFinal(final *advisor.FinalResult) {
	fmt.Printf("\n%s\n", final.Recommendation)
	if final.Rationale != "" {
		fmt.Printf("Why: %s\n", final.Rationale)
	}
	if len(final.Costs) > 0 {
		fmt.Println("Estimated costs:")
		for _, k := range sortedKeys(final.Costs) {
			fmt.Printf("  %-12s %.2f\n", k, final.Costs[k])
		}
	}
	if len(final.Plan) > 0 {
		fmt.Println("Action plan:")
		for i, step := range final.Plan {
			fmt.Printf("  %d. %s (%d wk)\n     %s\n", i+1, step.Task, step.Weeks, step.Notes)
		}
	}
	fmt.Println()
}

// #endregion output

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func agroStatus(cfg agro.Config) string {
	if !cfg.Enabled {
		return "disabled"
	}
	if cfg.APIKey == "" {
		return "no api key"
	}
	return cfg.BaseURL
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion helpers
