package analysis

// Outcome is the closed set of category enumerations an aggregate table can be
// keyed by. Only ResultOutcome and PhaseOutcome satisfy it.
type Outcome interface {
	ResultOutcome | PhaseOutcome
	String() string
	Key() string
}

const numOutcomes = 3

// Counts holds one count per category, indexed by the outcome value. Every
// category is always present.
type Counts [numOutcomes]int

// Total sums all categories.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// ResultOutcome classifies a game by its declared result.
type ResultOutcome int

const (
	ResultWin ResultOutcome = iota
	ResultLoss
	ResultDraw
)

func (o ResultOutcome) String() string {
	switch o {
	case ResultWin:
		return "Wins"
	case ResultLoss:
		return "Losses"
	case ResultDraw:
		return "Draws"
	default:
		return "Unknown"
	}
}

func (o ResultOutcome) Key() string {
	switch o {
	case ResultWin:
		return "win"
	case ResultLoss:
		return "loss"
	case ResultDraw:
		return "draw"
	default:
		return "unknown"
	}
}

// ResultOutcomes lists the result categories in column order.
func ResultOutcomes() []ResultOutcome {
	return []ResultOutcome{ResultWin, ResultLoss, ResultDraw}
}

// PhaseOutcome classifies a game by who held the edge when the opening ended.
type PhaseOutcome int

const (
	PhaseWin PhaseOutcome = iota
	PhaseLoss
	PhaseEqual
)

func (o PhaseOutcome) String() string {
	switch o {
	case PhaseWin:
		return "Wins"
	case PhaseLoss:
		return "Losses"
	case PhaseEqual:
		return "Equalizes"
	default:
		return "Unknown"
	}
}

func (o PhaseOutcome) Key() string {
	switch o {
	case PhaseWin:
		return "win"
	case PhaseLoss:
		return "loss"
	case PhaseEqual:
		return "equal"
	default:
		return "unknown"
	}
}

// PhaseOutcomes lists the opening-phase categories in column order.
func PhaseOutcomes() []PhaseOutcome {
	return []PhaseOutcome{PhaseWin, PhaseLoss, PhaseEqual}
}

// Columns returns the categories of O in column order.
func Columns[O Outcome]() []O {
	var zero O
	switch any(zero).(type) {
	case ResultOutcome:
		return any(ResultOutcomes()).([]O)
	case PhaseOutcome:
		return any(PhaseOutcomes()).([]O)
	}
	return nil
}

func validOutcome[O Outcome](o O) bool {
	return int(o) >= 0 && int(o) < numOutcomes
}
