package cmd

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/vytor/openingstats/internal/gamefile"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/pipeline"
	"github.com/vytor/openingstats/internal/report"
	"github.com/vytor/openingstats/internal/services"
)

func newPipelineCmd(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "pipeline",
		Short: "Run or list download-and-analyze pipelines",
	}
	c.AddCommand(newPipelineRunCmd(a), newPipelineListCmd())
	return c
}

func newPipelineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in pipelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := pipeline.Builtins()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(defs))
			for name := range defs {
				names = append(names, name)
			}
			sort.Strings(names)

			t := table.NewWriter()
			t.AppendHeader(table.Row{"Name", "Steps", "Description"})
			for _, name := range names {
				def := defs[name]
				marker := name
				if name == pipeline.DefaultName {
					marker += " (default)"
				}
				t.AppendRow(table.Row{marker, strings.Join(def.Steps(), ", "), strings.TrimSpace(def.Doc)})
			}
			t.SetStyle(table.StyleLight)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}

func newPipelineRunCmd(a *app) *cobra.Command {
	var (
		file        string
		format      string
		output      string
		maxParallel int
	)
	c := &cobra.Command{
		Use:   "run [NAME]",
		Short: "Run a built-in pipeline, or one loaded from a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				def *pipeline.Definition
				err error
			)
			switch {
			case file != "" && len(args) > 0:
				return errors.New("name a built-in pipeline or pass --file, not both")
			case file != "":
				def, err = pipeline.Load(file)
			default:
				name := ""
				if len(args) > 0 {
					name = args[0]
				}
				def, err = pipeline.Builtin(name)
			}
			if err != nil {
				return err
			}

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			st := &pipelineState{app: a, format: f, output: output}
			runner := pipeline.NewRunner(st.steps())
			runner.MaxParallel = maxParallel

			results, runErr := runner.Run(cmd.Context(), def)
			for _, r := range results {
				status := "ok"
				if r.Err != nil {
					status = r.Err.Error()
				}
				a.log.Info("%s (%s) finished in %v: %s", r.Path, r.Step, r.Duration, status)
			}
			if err := st.flush(cmd); err != nil {
				return err
			}
			return runErr
		},
	}
	c.Flags().StringVar(&file, "file", "", "pipeline definition file")
	c.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "report format")
	c.Flags().StringVarP(&output, "output", "o", "", "also save downloaded games to this file")
	c.Flags().IntVar(&maxParallel, "max-parallel", 0, "bound on concurrently running steps; 0 is unbounded")
	return c
}

// pipelineState is shared by the steps of one pipeline run. The download step
// fills games; analysis steps read them and queue rendered sections.
type pipelineState struct {
	*app
	format report.Format
	output string

	mu       sync.Mutex
	games    []models.Game
	loaded   bool
	sections map[string]*bytes.Buffer
}

func (s *pipelineState) steps() map[string]pipeline.StepFunc {
	return map[string]pipeline.StepFunc{
		"download":  s.download,
		"results":   s.analyze("results", resultsAnalyzer),
		"equalized": s.analyze("equalized", equalizedAnalyzer),
	}
}

func (s *pipelineState) download(ctx context.Context, args map[string]string) error {
	source := args["source"]
	if source == "" {
		source = models.SourceCanned
	}
	src, ok := s.sources()[source]
	if !ok {
		return errors.Newf("unknown source %q", source)
	}
	games, err := src.FetchGames(ctx, s.cfg.PlayerName, nil)
	if err != nil {
		return err
	}

	out := args["output"]
	if out == "" {
		out = s.output
	}
	if out != "" {
		if err := gamefile.Write(out, games); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.games = append(s.games, games...)
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// analyze returns a step that reports over the downloaded games, or over the
// games file when no download step ran first.
func (s *pipelineState) analyze(kind string, run analyzer) pipeline.StepFunc {
	return func(ctx context.Context, args map[string]string) error {
		s.mu.Lock()
		var loader services.GameLoader = services.StaticLoader(s.games)
		if !s.loaded {
			path := args["input"]
			if path == "" {
				path = s.cfg.GamesFile
			}
			loader = services.FileLoader{Path: path}
		}
		s.mu.Unlock()

		q := services.StatsQuery{
			Player:               s.cfg.PlayerName,
			Source:               args["source"],
			Strict:               args["strict"] == "true",
			RejectUnknownSubject: args["reject_unknown"] == "true",
		}
		var buf bytes.Buffer
		if err := run(ctx, s.statsService(loader), q, &buf, s.format); err != nil {
			return err
		}

		title := args["title"]
		if title == "" {
			title = kind
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.sections == nil {
			s.sections = make(map[string]*bytes.Buffer)
		}
		s.sections[title] = &buf
		return nil
	}
}

// flush writes the rendered sections ordered by title.
func (s *pipelineState) flush(cmd *cobra.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	titles := make([]string, 0, len(s.sections))
	for t := range s.sections {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	w := cmd.OutOrStdout()
	for i, t := range titles {
		if len(titles) > 1 && s.format != report.FormatJSON {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "== %s ==\n", t)
		}
		if _, err := s.sections[t].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
