// Command pantry is the command line client of the inventory core. It talks
// to the configured store directly and shares the services of the HTTP API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/mealink-backend/internal/app"
	"github.com/heartmarshall/mealink-backend/internal/auth"
	"github.com/heartmarshall/mealink-backend/internal/config"
	"github.com/heartmarshall/mealink-backend/internal/identity"
)

const appName = "pantry"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	token      string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Household food inventory client",
		Long: `Pantry searches the ingredient catalog and records what is in the
fridge, freezer and cupboard.

With session identity an access token (--token or PANTRY_TOKEN) is
required; with device identity a local user id is used.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.token, "token", os.Getenv("PANTRY_TOKEN"), "Access token for session identity")

	cmd.AddCommand(
		searchCmd(&g),
		addCmd(&g),
		listCmd(&g),
		intakeCmd(&g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, app.Build())
			},
		},
	)

	return cmd
}

// session bundles the wired core with the identity the command acts as.
type session struct {
	core     *app.Core
	identity identity.Provider
	logger   *slog.Logger
}

func (s *session) Close() {
	s.core.Close()
}

func openSession(ctx context.Context, g *globalFlags) (*session, error) {
	cfg, err := loadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	logger := app.NewLogger(cfg.Log, appName)

	core, err := app.NewCore(ctx, cfg, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("init core: %w", err)
	}

	ident := core.Identity
	if g.token != "" {
		jwtm := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)
		userID, err := jwtm.ValidateToken(ctx, g.token)
		if err != nil {
			core.Close()
			return nil, fmt.Errorf("access token: %w", err)
		}
		ident = identity.Fixed(userID)
	}

	return &session{core: core, identity: ident, logger: logger}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path, true)
}
