package cmd

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vytor/openingstats/internal/gamefile"
	"github.com/vytor/openingstats/internal/models"
)

type downloadFlags struct {
	source string
	output string
	store  bool
	full   bool
}

func newDownloadCmd(a *app) *cobra.Command {
	var f downloadFlags
	c := &cobra.Command{
		Use:   "download",
		Short: "Download the player's games to a file or into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.output == "" {
				f.output = a.cfg.GamesFile
			}
			if f.store {
				return a.importGames(cmd, f)
			}
			n, err := a.downloadToFile(cmd, f.source, f.output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d games to %s\n", n, f.output)
			return nil
		},
	}
	c.Flags().StringVar(&f.source, "source", models.SourceCanned, "game source: lichess, canned or chesscom")
	c.Flags().StringVarP(&f.output, "output", "o", "", "games file to write (default $GAMES_FILE)")
	c.Flags().BoolVar(&f.store, "store", false, "import into the database instead of writing a file")
	c.Flags().BoolVar(&f.full, "full", false, "with --store, ignore the last sync time")
	return c
}

func (a *app) downloadToFile(cmd *cobra.Command, source, output string) (int, error) {
	srcs := a.sources()
	src, ok := srcs[source]
	if !ok {
		return 0, errors.Newf("unknown source %q (available: %s)", source, strings.Join(srcs.Names(), ", "))
	}

	games, err := src.FetchGames(cmd.Context(), a.cfg.PlayerName, nil)
	if err != nil {
		return 0, err
	}
	if err := gamefile.Write(output, games); err != nil {
		return 0, err
	}
	a.log.Info("saved %d %s games to %s", len(games), source, output)
	return len(games), nil
}

func (a *app) importGames(cmd *cobra.Command, f downloadFlags) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.imports.Import(cmd.Context(), models.ImportRequest{
		Username: a.cfg.PlayerName,
		Source:   f.source,
		Full:     f.full,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "import %s: fetched %d games, stored %d new\n",
		run.ID, run.GamesFetched, run.GamesInserted)
	return nil
}
