// Package cli is the terminal front end onto the coordinator. It is a
// stand-in UI collaborator: every command reads from the session and
// renders plain text.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-client/internal/auth"
	"github.com/spec-kit/helpdesk-client/internal/config"
	"github.com/spec-kit/helpdesk-client/internal/events"
	"github.com/spec-kit/helpdesk-client/internal/observability"
	"github.com/spec-kit/helpdesk-client/internal/persistence"
	"github.com/spec-kit/helpdesk-client/internal/remote"
	"github.com/spec-kit/helpdesk-client/internal/session"
)

var (
	cfgFile string
	apiURL  string
	token   string

	cfg     *config.Config
	logger  *zap.Logger
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Helpdesk ticket client",
	Long: `Helpdesk is a terminal client for the ticket-tracking backend.
It caches tickets and reference data per session and validates lifecycle
transitions locally before touching the network.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfgFile != "" {
			if _, statErr := os.Stat(cfgFile); statErr == nil {
				if err := cfg.ApplyFile(cfgFile); err != nil {
					return err
				}
			}
		}
		if apiURL != "" {
			cfg.API.BaseURL = apiURL
		}
		if token != "" {
			cfg.API.Token = token
		}

		logger, err = observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("helpdesk %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "helpdesk.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (overrides HELPDESK_TOKEN)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(transitionCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(techniciansCmd)
	rootCmd.AddCommand(versionCmd)
}

// SetVersion stamps the build version.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newRemoteClient() *remote.Client {
	return remote.NewClient(cfg.API, logger)
}

// withSession opens a session from the stored token, runs fn, and closes
// the session afterwards.
func withSession(fn func(ctx context.Context, s *session.Session) error) error {
	if cfg.API.Token == "" {
		return fmt.Errorf("no access token; run `helpdesk login` and export HELPDESK_TOKEN")
	}
	grant, err := auth.GrantFromToken(cfg.API.Token)
	if err != nil {
		return fmt.Errorf("invalid access token: %w", err)
	}

	client := newRemoteClient()
	client.SetToken(grant.Token)

	snapshots := persistence.NewRedis(cfg.Redis, logger)
	defer snapshots.Close()

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	observability.NewEventRecorder(metrics, logger).Register(dispatcher)

	s := session.Open(grant, session.Options{
		Remote:      client,
		Snapshots:   snapshots,
		SnapshotTTL: cfg.Redis.SnapshotTTL(),
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	defer s.Close()

	return fn(context.Background(), s)
}
