package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/openingstats/internal/analysis"
	"github.com/vytor/openingstats/internal/report"
)

func resultsTable(t *testing.T) *analysis.Table[analysis.ResultOutcome] {
	t.Helper()
	tbl := analysis.NewTable[analysis.ResultOutcome]()
	require.NoError(t, tbl.Add("Sicilian Defense", analysis.ResultWin))
	require.NoError(t, tbl.Add("Sicilian Defense", analysis.ResultLoss))
	require.NoError(t, tbl.Add("French Defense", analysis.ResultDraw))
	return tbl
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want report.Format
	}{
		{"", report.FormatText},
		{"TEXT", report.FormatText},
		{"md", report.FormatMarkdown},
		{"csv", report.FormatCSV},
		{"html", report.FormatHTML},
		{"legacy", report.FormatPlain},
		{" json ", report.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := report.ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := report.ParseFormat("yaml")
	assert.True(t, errors.Is(err, report.ErrUnknownFormat))
}

func TestPlain(t *testing.T) {
	want := "Sicilian Defense:\n     Wins: 1\n     Losses: 1\n     Draws: 0\n" +
		"French Defense:\n     Wins: 0\n     Losses: 0\n     Draws: 1\n"
	assert.Equal(t, want, report.Plain(resultsTable(t)))
}

func TestPlain_PhaseLabels(t *testing.T) {
	tbl := analysis.NewTable[analysis.PhaseOutcome]()
	require.NoError(t, tbl.Add("Italian Game", analysis.PhaseEqual))

	assert.Equal(t, "Italian Game:\n     Wins: 0\n     Losses: 0\n     Equalizes: 1\n", report.Plain(tbl))
}

func TestPlain_Empty(t *testing.T) {
	assert.Empty(t, report.Plain(analysis.NewTable[analysis.PhaseOutcome]()))
}

func TestRender_Text(t *testing.T) {
	var buf bytes.Buffer
	r := report.New("openings-win-loss-rate", "dgs3", resultsTable(t), analysis.Summary{Records: 3, Counted: 3})

	require.NoError(t, report.Render(&buf, report.FormatText, r))

	out := buf.String()
	assert.Contains(t, out, "openings-win-loss-rate (dgs3)")
	assert.Contains(t, out, "Sicilian Defense")
	assert.Contains(t, out, "French Defense")
	assert.Contains(t, strings.ToUpper(out), "DRAWS")
	assert.Less(t, strings.Index(out, "Sicilian Defense"), strings.Index(out, "French Defense"))
}

func TestRender_CSV(t *testing.T) {
	var buf bytes.Buffer
	r := report.New("openings-win-loss-rate", "dgs3", resultsTable(t), analysis.Summary{})

	require.NoError(t, report.Render(&buf, report.FormatCSV, r))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.EqualFold("Opening,Wins,Losses,Draws,Total", lines[0]), lines[0])
	assert.Equal(t, "Sicilian Defense,1,1,0,2", lines[1])
	assert.Equal(t, "French Defense,0,0,1,1", lines[2])
	assert.True(t, strings.EqualFold("Total,1,1,1,3", lines[3]), lines[3])
}

func TestRender_MarkdownAndHTML(t *testing.T) {
	r := report.New("opening-equalized", "dgs3", analysis.NewTable[analysis.PhaseOutcome](), analysis.Summary{})

	var md bytes.Buffer
	require.NoError(t, report.Render(&md, report.FormatMarkdown, r))
	assert.Contains(t, strings.ToLower(md.String()), "| opening |")
	assert.Contains(t, strings.ToLower(md.String()), "equalizes")

	var html bytes.Buffer
	require.NoError(t, report.Render(&html, report.FormatHTML, r))
	assert.Contains(t, html.String(), "<table")
}

func TestRender_JSON(t *testing.T) {
	sum := analysis.Summary{
		Records:  4,
		Counted:  3,
		Rejected: []analysis.RecordError{{Index: 2, GameID: "bad", Err: errors.New("no players")}},
	}
	r := report.New("openings-win-loss-rate", "dgs3", resultsTable(t), sum)

	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, report.FormatJSON, r))

	var got struct {
		Analysis string `json:"analysis"`
		Player   string `json:"player"`
		Rows     []struct {
			Opening string         `json:"opening"`
			Counts  map[string]int `json:"counts"`
		} `json:"rows"`
		Summary struct {
			Records int `json:"records"`
			Counted int `json:"counted"`
		} `json:"summary"`
		Rejected []report.RejectedRecord `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "dgs3", got.Player)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, map[string]int{"win": 1, "loss": 1, "draw": 0}, got.Rows[0].Counts)
	assert.Equal(t, 4, got.Summary.Records)
	require.Len(t, got.Rejected, 1)
	assert.Equal(t, "bad", got.Rejected[0].GameID)
	assert.Equal(t, "no players", got.Rejected[0].Reason)
}

func TestRender_UnknownFormat(t *testing.T) {
	r := report.New[analysis.ResultOutcome]("x", "", nil, analysis.Summary{})
	err := report.Render(&bytes.Buffer{}, report.Format("yaml"), r)
	assert.True(t, errors.Is(err, report.ErrUnknownFormat))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", report.FormatJSON.ContentType())
	assert.Equal(t, "text/plain; charset=utf-8", report.FormatPlain.ContentType())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriteError(t *testing.T) {
	r := report.New("openings-win-loss-rate", "dgs3", resultsTable(t), analysis.Summary{})
	for _, f := range report.Formats() {
		t.Run(string(f), func(t *testing.T) {
			err := report.Render(failingWriter{}, f, r)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "disk full")
		})
	}
}
