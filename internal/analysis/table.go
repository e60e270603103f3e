package analysis

import (
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Table maps opening names to per-category counts. Openings keep the order in
// which they were first seen.
type Table[O Outcome] struct {
	order []string
	rows  map[string]*Counts
}

// NewTable returns an empty table.
func NewTable[O Outcome]() *Table[O] {
	return &Table[O]{rows: make(map[string]*Counts)}
}

// Row is one opening with its counts.
type Row[O Outcome] struct {
	Opening string
	Counts  Counts
}

// Count returns the count for a single category.
func (r Row[O]) Count(o O) int {
	if !validOutcome(o) {
		return 0
	}
	return r.Counts[int(o)]
}

func (r Row[O]) Total() int { return r.Counts.Total() }

// Columns returns the table's categories in column order.
func (t *Table[O]) Columns() []O { return Columns[O]() }

// Len is the number of distinct openings.
func (t *Table[O]) Len() int { return len(t.order) }

// Openings returns the opening keys in insertion order.
func (t *Table[O]) Openings() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Table[O]) row(opening string) *Counts {
	c, ok := t.rows[opening]
	if !ok {
		c = &Counts{}
		t.rows[opening] = c
		t.order = append(t.order, opening)
	}
	return c
}

// Add increments one category for an opening, creating a zeroed row first when
// the opening is new.
func (t *Table[O]) Add(opening string, o O) error {
	if !validOutcome(o) {
		return errors.Newf("outcome %d is not a %T category", int(o), o)
	}
	t.row(opening)[int(o)]++
	return nil
}

// AddCounts adds a whole row point-wise.
func (t *Table[O]) AddCounts(opening string, c Counts) {
	r := t.row(opening)
	for i, v := range c {
		r[i] += v
	}
}

// Counts returns a copy of the row for an opening.
func (t *Table[O]) Counts(opening string) (Counts, bool) {
	c, ok := t.rows[opening]
	if !ok {
		return Counts{}, false
	}
	return *c, true
}

// Count returns a single cell; zero when the opening is absent.
func (t *Table[O]) Count(opening string, o O) int {
	c, ok := t.rows[opening]
	if !ok || !validOutcome(o) {
		return 0
	}
	return c[int(o)]
}

// Total sums every cell of the table.
func (t *Table[O]) Total() int {
	n := 0
	for _, c := range t.rows {
		n += c.Total()
	}
	return n
}

// Merge adds other into t point-wise. Openings new to t are appended in other's
// order.
func (t *Table[O]) Merge(other *Table[O]) {
	if other == nil {
		return
	}
	for _, opening := range other.order {
		t.AddCounts(opening, *other.rows[opening])
	}
}

// Rows returns the table contents in insertion order.
func (t *Table[O]) Rows() []Row[O] {
	out := make([]Row[O], 0, len(t.order))
	for _, opening := range t.order {
		out = append(out, Row[O]{Opening: opening, Counts: *t.rows[opening]})
	}
	return out
}

// Map returns a nested map view. Every opening maps every category of O.
func (t *Table[O]) Map() map[string]map[O]int {
	cols := Columns[O]()
	out := make(map[string]map[O]int, len(t.rows))
	for opening, c := range t.rows {
		m := make(map[O]int, len(cols))
		for _, col := range cols {
			m[col] = c[int(col)]
		}
		out[opening] = m
	}
	return out
}

// Clone returns an independent copy.
func (t *Table[O]) Clone() *Table[O] {
	out := NewTable[O]()
	out.Merge(t)
	return out
}

// MergeTables folds tables into a new one in argument order.
func MergeTables[O Outcome](tables ...*Table[O]) *Table[O] {
	out := NewTable[O]()
	for _, t := range tables {
		out.Merge(t)
	}
	return out
}

type rowJSON struct {
	Opening string         `json:"opening"`
	Counts  map[string]int `json:"counts"`
	Total   int            `json:"total"`
}

// MarshalJSON encodes the table as an ordered list of rows keyed by category.
func (t *Table[O]) MarshalJSON() ([]byte, error) {
	cols := Columns[O]()
	rows := make([]rowJSON, 0, len(t.order))
	for _, r := range t.Rows() {
		counts := make(map[string]int, len(cols))
		for _, col := range cols {
			counts[col.Key()] = r.Count(col)
		}
		rows = append(rows, rowJSON{Opening: r.Opening, Counts: counts, Total: r.Total()})
	}
	return sonic.ConfigStd.Marshal(rows)
}
