// Package cmd holds the openingstats command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vytor/openingstats/internal/config"
	"github.com/vytor/openingstats/internal/logger"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg config.Config
	log *logger.Logger
}

// NewRootCmd builds the command tree. Configuration is read from the
// environment when a command runs, so tests can set it per invocation.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var player, logLevel string

	root := &cobra.Command{
		Use:           "openingstats",
		Short:         "Win/loss/draw and opening-phase statistics per chess opening.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load()
			if cmd.Flags().Changed("player") {
				a.cfg.PlayerName = player
			}
			if cmd.Flags().Changed("log-level") {
				a.cfg.LogLevel = strings.ToUpper(logLevel)
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			a.log = logger.New(
				logger.WithLevel(logger.ParseLevel(a.cfg.LogLevel)),
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithColors(isTerminal(os.Stderr)),
				logger.WithFormat(logger.ParseFormat(a.cfg.LogFormat)),
			)
			logger.SetDefault(a.log)
			cmd.SetContext(logger.NewContext(cmd.Context(), a.log))

			a.log.Debug("player=%s", a.cfg.PlayerName)
			a.log.Debug("games_file=%s", a.cfg.GamesFile)
			a.log.Debug("db_path=%s", a.cfg.DBPath)
			a.log.Debug("shard_count=%d", a.cfg.ShardCount)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&player, "player", "", "player whose games are analyzed (default $PLAYER_NAME)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (default $LOG_LEVEL)")

	root.AddCommand(
		newDownloadCmd(a),
		newResultsCmd(a),
		newEqualizedCmd(a),
		newPipelineCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the command tree until completion or an interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
