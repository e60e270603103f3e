package cmd

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/vytor/openingstats/internal/analysis"
	"github.com/vytor/openingstats/internal/report"
	"github.com/vytor/openingstats/internal/services"
)

type analyzeFlags struct {
	input         string
	fromDB        bool
	format        string
	strict        bool
	rejectUnknown bool
	source        string
}

func (f *analyzeFlags) register(c *cobra.Command) {
	c.Flags().StringVarP(&f.input, "input", "i", "", "games file to read (default $GAMES_FILE)")
	c.Flags().BoolVar(&f.fromDB, "from-db", false, "read the player's stored games instead of a file")
	c.Flags().StringVarP(&f.format, "format", "f", string(report.FormatText), "output format: text, markdown, csv, html, plain or json")
	c.Flags().BoolVar(&f.strict, "strict", false, "fail on the first malformed record")
	c.Flags().BoolVar(&f.rejectUnknown, "reject-unknown", false, "treat games the player did not play as malformed")
	c.Flags().StringVar(&f.source, "source", "", "only count games from this source")
	c.MarkFlagsMutuallyExclusive("input", "from-db")
}

func (f *analyzeFlags) query(player string) services.StatsQuery {
	return services.StatsQuery{
		Player:               player,
		Source:               f.source,
		Strict:               f.strict,
		RejectUnknownSubject: f.rejectUnknown,
	}
}

// analyzer runs one analysis and renders its report.
type analyzer func(ctx context.Context, svc services.StatsService, q services.StatsQuery, w io.Writer, format report.Format) error

func renderWith[O analysis.Outcome](
	fetch func(services.StatsService, context.Context, services.StatsQuery) (*report.Report[O], error),
) analyzer {
	return func(ctx context.Context, svc services.StatsService, q services.StatsQuery, w io.Writer, format report.Format) error {
		r, err := fetch(svc, ctx, q)
		if err != nil {
			return err
		}
		return report.Render(w, format, *r)
	}
}

var (
	resultsAnalyzer   = renderWith(services.StatsService.OpeningResults)
	equalizedAnalyzer = renderWith(services.StatsService.OpeningEqualized)
)

func newResultsCmd(a *app) *cobra.Command {
	return newAnalyzeCmd(a, "results",
		"Win, loss and draw counts per opening",
		resultsAnalyzer)
}

func newEqualizedCmd(a *app) *cobra.Command {
	return newAnalyzeCmd(a, "equalized",
		"Opening-phase advantage per opening, from engine evaluations",
		equalizedAnalyzer)
}

func newAnalyzeCmd(a *app, use, short string, run analyzer) *cobra.Command {
	var f analyzeFlags
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(f.format)
			if err != nil {
				return err
			}

			var loader services.GameLoader
			if f.fromDB {
				st, err := a.openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				loader = st.loader
			} else {
				path := f.input
				if path == "" {
					path = a.cfg.GamesFile
				}
				loader = services.FileLoader{Path: path}
			}

			err = run(cmd.Context(), a.statsService(loader), f.query(a.cfg.PlayerName), cmd.OutOrStdout(), format)
			return errors.Wrapf(err, "%s", use)
		},
	}
	f.register(c)
	return c
}
