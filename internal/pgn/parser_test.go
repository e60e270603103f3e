package pgn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/openingstats/internal/pgn"
)

const sicilianPGN = `[Event "Live Chess"]
[Site "Chess.com"]
[Date "2024.01.15"]
[White "dgs3"]
[Black "Player2"]
[Result "*"]
[WhiteElo "1500"]
[BlackElo "1600"]
[ECO "B20"]
[ECOUrl "https://www.chess.com/openings/Sicilian-Defense-Old-Sicilian-Variation-2...Nc6"]

1. e4 c5 2. Nf3 d6 *`

func TestParseHeaders(t *testing.T) {
	headers := pgn.ParseHeaders(sicilianPGN)

	assert.Equal(t, "Live Chess", headers["Event"])
	assert.Equal(t, "dgs3", headers["White"])
	assert.Equal(t, "1600", headers["BlackElo"])
	assert.Equal(t, "B20", headers["ECO"])
	assert.Contains(t, headers["ECOUrl"], "Sicilian-Defense")
}

func TestParseHeaders_Ignored(t *testing.T) {
	tests := []struct {
		name string
		pgn  string
	}{
		{name: "empty", pgn: ""},
		{name: "movetext only", pgn: "1. e4 e5 2. Nf3 Nc6"},
		{name: "unquoted values", pgn: "[Event Live Chess]\n[Site Chess.com]\n1. e4 e5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, pgn.ParseHeaders(tt.pgn))
		})
	}
}

func TestParseHeaders_Apostrophe(t *testing.T) {
	headers := pgn.ParseHeaders(`  [Opening "King's Gambit"]`)
	assert.Equal(t, "King's Gambit", headers["Opening"])
}

func TestExtractGameID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.chess.com/game/live/12345678", "12345678"},
		{"https://www.chess.com/game/daily/98765432/analysis", "98765432"},
		{"https://www.chess.com/game/live/00012345", "00012345"},
		{"https://www.chess.com/game/live", "https://www.chess.com/game/live"},
		{"https://example.com/game/123", "https://example.com/game/123"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, pgn.ExtractGameID(tt.url))
		})
	}
}

func TestOpeningFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.chess.com/openings/Sicilian-Defense-Old-Sicilian-Variation-2...Nc6", "Sicilian Defense Old Sicilian Variation"},
		{"https://www.chess.com/openings/Queens-Pawn-Opening-1...d5-2.c4", "Queens Pawn Opening"},
		{"https://www.chess.com/openings/Caro-Kann-Defense", "Caro Kann Defense"},
		{"https://www.chess.com/openings/Italian-Game/", "Italian Game"},
		{"https://www.chess.com/openings/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, pgn.OpeningFromURL(tt.url))
		})
	}
}

func TestDetectOpening(t *testing.T) {
	found, ok, err := pgn.DetectOpening(sicilianPGN)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, found.Name, "Sicilian")
	assert.NotEmpty(t, found.ECO)
	assert.Equal(t, "B", found.ECO[:1])
}

func TestDetectOpening_NoMoves(t *testing.T) {
	_, ok, err := pgn.DetectOpening("[Event \"x\"]\n[Result \"*\"]\n\n*")
	require.NoError(t, err)
	assert.False(t, ok)
}
