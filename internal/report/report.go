package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/vytor/openingstats/internal/analysis"
)

// Format selects how a table is rendered.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatHTML     Format = "html"
	FormatPlain    Format = "plain"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for names it does not know.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatCSV, FormatHTML, FormatPlain, FormatJSON}
}

// ParseFormat maps a user supplied name to a Format. The empty string selects text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "table":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "html":
		return FormatHTML, nil
	case "plain", "legacy":
		return FormatPlain, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

// ContentType is the HTTP media type for a rendered format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Report is a rendered analysis: which analysis ran, for whom, and its result.
type Report[O analysis.Outcome] struct {
	Analysis string             `json:"analysis"`
	Player   string             `json:"player"`
	Rows     *analysis.Table[O] `json:"rows"`
	Summary  analysis.Summary   `json:"summary"`
	Rejected []RejectedRecord   `json:"rejected,omitempty"`
}

// RejectedRecord is the serializable form of analysis.RecordError.
type RejectedRecord struct {
	Index  int    `json:"index"`
	GameID string `json:"game_id"`
	Reason string `json:"reason"`
}

// New builds a report and copies the summary's rejections into a serializable form.
func New[O analysis.Outcome](name, player string, t *analysis.Table[O], sum analysis.Summary) Report[O] {
	if t == nil {
		t = analysis.NewTable[O]()
	}
	r := Report[O]{Analysis: name, Player: player, Rows: t, Summary: sum}
	for _, rej := range sum.Rejected {
		r.Rejected = append(r.Rejected, RejectedRecord{Index: rej.Index, GameID: rej.GameID, Reason: rej.Err.Error()})
	}
	return r
}

// Render writes r to w in the requested format. Every opening is written with
// its counts in the outcome enumeration order.
func Render[O analysis.Outcome](w io.Writer, f Format, r Report[O]) error {
	switch f {
	case FormatPlain:
		_, err := io.WriteString(w, Plain(r.Rows))
		return err
	case FormatJSON:
		data, err := sonic.ConfigStd.MarshalIndent(r, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encode report")
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatText, FormatMarkdown, FormatCSV, FormatHTML:
		return renderTable(w, f, r)
	}
	return errors.Wrapf(ErrUnknownFormat, "%q", f)
}

func renderTable[O analysis.Outcome](w io.Writer, f Format, r Report[O]) error {
	t := table.NewWriter()

	header := table.Row{"Opening"}
	for _, o := range analysis.Columns[O]() {
		header = append(header, o.String())
	}
	header = append(header, "Total")
	t.AppendHeader(header)

	var totals analysis.Counts
	for _, row := range r.Rows.Rows() {
		line := table.Row{row.Opening}
		for i, o := range analysis.Columns[O]() {
			line = append(line, row.Count(o))
			totals[i] += row.Count(o)
		}
		line = append(line, row.Total())
		t.AppendRow(line)
	}

	footer := table.Row{"Total"}
	for i := range analysis.Columns[O]() {
		footer = append(footer, totals[i])
	}
	footer = append(footer, totals.Total())
	t.AppendFooter(footer)

	var out string
	switch f {
	case FormatMarkdown:
		out = t.RenderMarkdown()
	case FormatCSV:
		out = t.RenderCSV()
	case FormatHTML:
		out = t.RenderHTML()
	default:
		if r.Player != "" {
			t.SetTitle(fmt.Sprintf("%s (%s)", r.Analysis, r.Player))
		} else {
			t.SetTitle(r.Analysis)
		}
		t.SetStyle(table.StyleRounded)
		out = t.Render()
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

// Plain renders the legacy line-oriented format:
//
//	Sicilian Defense:
//	     Wins: 1
//	     Losses: 0
//	     Draws: 0
func Plain[O analysis.Outcome](t *analysis.Table[O]) string {
	var sb strings.Builder
	for _, row := range t.Rows() {
		parts := []string{row.Opening + ":\n"}
		for _, o := range analysis.Columns[O]() {
			parts = append(parts, fmt.Sprintf("    %s: %d\n", o.String(), row.Count(o)))
		}
		sb.WriteString(strings.Join(parts, " "))
	}
	return sb.String()
}
