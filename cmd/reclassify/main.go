package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"studymap/internal/ai"
	"studymap/internal/ingest"
	"studymap/internal/store"
	"studymap/pkg/config"
	apperrors "studymap/pkg/errors"
	"studymap/pkg/logger"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "reclassify [entry-id...]",
		Short: "Re-classify entries that are missing AI classification",
		Long: "Re-runs AI annotation for stored entries. With no arguments every\n" +
			"unclassified entry is processed; explicit entry ids re-classify\n" +
			"those entries regardless of their current state.",
		RunE: run,
	}

	rootCmd.Flags().StringVar(&dbPath, "db", "", "database path (defaults to DB_PATH)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		return err
	}
	defer logger.Sync()

	path := dbPath
	if path == "" {
		path = cfg.DBPath
	}
	st, err := store.New(path)
	if err != nil {
		return err
	}
	defer st.Close()

	client := ai.NewClient(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.OllamaModel,
		time.Duration(cfg.AITimeoutSeconds)*time.Second, cfg.AITemperature)
	svc := ingest.New(st, ai.NewClassifier(client))

	ctx := context.Background()

	var ids []int64
	if len(args) > 0 {
		for _, a := range args {
			id, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", a)
			}
			ids = append(ids, id)
		}
	} else {
		ids, err = svc.Unclassified(ctx)
		if err != nil {
			return err
		}
	}

	if len(ids) == 0 {
		fmt.Println("No entries to re-classify.")
		return nil
	}

	fmt.Printf("Re-classifying %d entry(s): %v\n\n", len(ids), ids)

	success := 0
	for _, id := range ids {
		if reclassifyOne(ctx, st, svc, id) {
			success++
		}
		fmt.Println()
	}

	fmt.Printf("Done. %d/%d entries re-classified.\n", success, len(ids))
	return nil
}

func reclassifyOne(ctx context.Context, st *store.Store, svc *ingest.Service, id int64) bool {
	e, err := st.GetEntry(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			fmt.Printf("  Entry #%d not found.\n", id)
		} else {
			fmt.Printf("  Entry #%d: %v\n", id, err)
		}
		return false
	}

	fmt.Printf("  Processing #%d: %s\n", id, e.TopicTitle)

	res, err := svc.Reclassify(ctx, id)
	if err != nil {
		fmt.Printf("  AI classification failed: %v\n", err)
		return false
	}

	if res.Classification != nil {
		fmt.Printf("  Updated classification: %s / %s\n",
			res.Classification.Domain, res.Classification.Complexity)
	}
	for _, c := range res.Connections {
		fmt.Printf("  Added connection to #%d: %s\n", c.TargetEntryID, c.Relationship)
	}
	for _, b := range res.Blindspots {
		fmt.Printf("  Added blindspot: %s\n", truncate(b.Suggestion, 50))
	}
	if res.EnhancedSummary != "" {
		fmt.Printf("  Updated enhanced summary (%d chars)\n", len(res.EnhancedSummary))
	}

	return true
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
