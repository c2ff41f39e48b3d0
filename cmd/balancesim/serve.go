package main

import (
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/11vate/balance-sim-go/internal/api"
	"github.com/11vate/balance-sim-go/internal/config"
	"github.com/11vate/balance-sim-go/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation API over HTTP",
	Long: `Starts the HTTP server. Configuration comes from the environment:

  BALANCESIM_ADDR                listen address (default :8080)
  BALANCESIM_DB                  SQLite path (default balancesim.db)
  BALANCESIM_LOG_LEVEL           zap level (default info)
  BALANCESIM_REQUEST_TIMEOUT_MS  per-request budget (default 60000)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		db, err := store.NewSQLiteDB(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			return err
		}

		srv := api.NewServer(db, logger, cfg)
		logger.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("db", cfg.DBPath),
		)
		return http.ListenAndServe(cfg.Addr, srv.Routes())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
