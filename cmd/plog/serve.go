package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/docqmentary/plog/internal/config"
	"github.com/docqmentary/plog/internal/devserver"
	"github.com/docqmentary/plog/internal/posts"
	"github.com/docqmentary/plog/internal/storage"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local development backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			db, err := storage.OpenDatabase(filepath.Join(opts.dataDir, "devserver.db"))
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := storage.RunMigrations(db); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			var serverOpts devserver.Options
			if cfg.DevServer.AllowHTTPFetch {
				serverOpts.Fetcher = posts.NewFetcher(cfg.Fetch.FeedBaseURL,
					time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second)
				slog.Info("verify endpoint will fetch posts when hints are missing")
			}

			router := devserver.NewRouter(storage.NewStore(db), serverOpts)

			addr := "localhost:" + strconv.Itoa(cfg.DevServer.Port)
			slog.Info("starting dev server", "addr", "http://"+addr)
			return http.ListenAndServe(addr, router)
		},
	}
}

// parseInt64 parses a decimal command-line argument.
func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
