// Package main provides the terminal client for taking practice exams.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/certbible/certprep/internal/catalog"
	"github.com/certbible/certprep/internal/config"
	"github.com/certbible/certprep/internal/database"
	"github.com/certbible/certprep/internal/logger"
	"github.com/certbible/certprep/internal/model"
	"github.com/certbible/certprep/internal/provider"
	"github.com/certbible/certprep/internal/repository"
	"github.com/certbible/certprep/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const localLearner = "local"

var (
	dbPath   string
	logLevel string

	takeExam   string
	takeDomain string
	takeCount  int
	takeFile   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "certprep",
		Short:        "Practice certification exams in the terminal",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "SQLite file holding your result history")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newTakeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newReviewCmd())
	return rootCmd
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".certprep", "history.db")
	}
	return filepath.Join(home, ".certprep", "history.db")
}

// app bundles what every subcommand needs. close releases the database.
type app struct {
	log      zerolog.Logger
	catalog  *catalog.Catalog
	results  *service.ResultService
	sessions *service.SessionService
	styles   styles
	close    func()
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	log := logger.New(os.Stderr, logLevel, "pretty")

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	db, err := database.OpenSQLite(dbPath)
	if err != nil {
		return nil, err
	}
	store, err := repository.NewSQLiteResultStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	source := provider.NewClient(provider.Config{
		QuestionURL:     cfg.QuestionAPIURL,
		PracticeExamURL: cfg.PracticeExamAPIURL,
		APIKey:          cfg.QuestionAPIKey,
		Timeout:         cfg.ProviderTimeout,
	}, log)

	results := service.NewResultService(store, cfg.HistoryLimit, nil, log)
	return &app{
		log:      log,
		catalog:  cat,
		results:  results,
		sessions: service.NewSessionService(source, cat, results, log),
		styles:   detectStyles(os.Stdout),
		close:    func() { _ = db.Close() },
	}, nil
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the available exams and domains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := catalog.Default()
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), detectStyles(os.Stdout), cat)
			return nil
		},
	}
}

func newTakeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take a practice exam or a domain drill",
		Args:  cobra.NoArgs,
		RunE:  runTakeCmd,
	}
	cmd.Flags().StringVar(&takeExam, "exam", "", "exam code, e.g. A1101")
	cmd.Flags().StringVar(&takeDomain, "domain", "", "drill a single domain, e.g. 1.2")
	cmd.Flags().IntVar(&takeCount, "count", 0, "number of questions (default: full practice exam or 1 for a drill)")
	cmd.Flags().StringVar(&takeFile, "file", "", "read questions from a JSON file instead of the question API")
	return cmd
}

func runTakeCmd(cmd *cobra.Command, _ []string) error {
	if takeExam == "" && takeFile == "" {
		return fmt.Errorf("either --exam or --file is required")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	req := model.StartSessionRequest{Exam: takeExam, Domain: takeDomain, Count: takeCount}
	if takeFile != "" {
		raw, err := os.ReadFile(takeFile)
		if err != nil {
			return fmt.Errorf("read questions: %w", err)
		}
		req.Questions = raw
	}

	view, err := a.sessions.Start(ctx, localLearner, req)
	if err != nil {
		return err
	}

	p := &player{
		sessions: a.sessions,
		learner:  localLearner,
		id:       view.SessionID,
		in:       cmd.InOrStdin(),
		out:      cmd.OutOrStdout(),
		st:       a.styles,
	}
	return p.run(ctx)
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show your past results, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			printHistory(cmd.OutOrStdout(), a.styles, a.results.History(cmd.Context(), localLearner))
			return nil
		},
	}
}

func newReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <n|result-id>",
		Short: "Review a past result; n counts from the newest (1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			id := args[0]
			if n, err := strconv.Atoi(id); err == nil {
				history := a.results.History(ctx, localLearner)
				if n < 1 || n > len(history) {
					return fmt.Errorf("no result #%d, you have %d", n, len(history))
				}
				id = history[len(history)-n].ID
			}

			out, err := a.results.Review(ctx, localLearner, id)
			if err != nil {
				return err
			}
			printReview(cmd.OutOrStdout(), a.styles, out)
			return nil
		},
	}
}
