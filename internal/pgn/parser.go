package pgn

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

var headerRe = regexp.MustCompile(`\[(\w+)\s+"([^"]+)"\]`)

// ParseHeaders extracts PGN header tags into a map
func ParseHeaders(pgn string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(pgn, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "[") {
			continue
		}
		m := headerRe.FindStringSubmatch(line)
		if len(m) == 3 {
			out[m[1]] = m[2]
		}
	}
	return out
}

var gameIDRe = regexp.MustCompile(`.*/game/[^/]+/([0-9]+)`)

// ExtractGameID extracts the game ID from a chess.com game URL
func ExtractGameID(url string) string {
	m := gameIDRe.FindStringSubmatch(url)
	if len(m) == 2 {
		return m[1]
	}
	return url
}

// OpeningFromURL turns a chess.com ECOUrl into an opening name. The trailing move
// sequence of the slug is dropped so that games group by line, e.g.
// ".../openings/Sicilian-Defense-Closed-2...Nc6-3.g3" becomes
// "Sicilian Defense Closed".
func OpeningFromURL(ecoURL string) string {
	if ecoURL == "" {
		return ""
	}
	u, err := url.Parse(ecoURL)
	if err != nil {
		return ""
	}
	slug := path.Base(strings.TrimSuffix(u.Path, "/"))
	if slug == "." || slug == "/" || slug == "openings" {
		return ""
	}
	if unescaped, err := url.PathUnescape(slug); err == nil {
		slug = unescaped
	}

	var words []string
	for _, w := range strings.Split(slug, "-") {
		if w == "" {
			continue
		}
		if r := []rune(w)[0]; unicode.IsDigit(r) {
			break
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

var (
	bookOnce sync.Once
	book     *opening.BookECO
)

func ecoBook() *opening.BookECO {
	bookOnce.Do(func() {
		book = opening.NewBookECO()
	})
	return book
}

// Opening is an ECO book match.
type Opening struct {
	ECO  string
	Name string
}

// DetectOpening replays the PGN moves against the ECO book and returns the
// deepest matching opening. ok is false when the book has no match.
func DetectOpening(pgnText string) (Opening, bool, error) {
	pgnOpt, err := chess.PGN(strings.NewReader(pgnText))
	if err != nil {
		return Opening{}, false, errors.Wrap(err, "parse pgn")
	}
	game := chess.NewGame(pgnOpt)
	moves := game.Moves()
	if len(moves) == 0 {
		return Opening{}, false, nil
	}

	found := ecoBook().Find(moves)
	if found == nil {
		return Opening{}, false, nil
	}
	return Opening{ECO: found.Code(), Name: found.Title()}, true, nil
}
