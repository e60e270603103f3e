package analysis_test

import "github.com/vytor/openingstats/internal/models"

func slot(name string) *models.PlayerSlot {
	return &models.PlayerSlot{User: &models.User{Name: name, ID: name}}
}

func players(white, black string) *models.Players {
	return &models.Players{White: slot(white), Black: slot(black)}
}

func decisive(id, opening, white, black string, winner models.Color) models.Game {
	return models.Game{
		ID:      id,
		Status:  models.StatusResign,
		Players: players(white, black),
		Winner:  winner,
		Opening: &models.Opening{Name: opening},
	}
}

func drawn(id, opening, white, black string) models.Game {
	return models.Game{
		ID:      id,
		Status:  models.StatusDraw,
		Players: players(white, black),
		Opening: &models.Opening{Name: opening},
	}
}

// evals builds an evaluation sequence of n entries, all zero except the entry at
// idx which gets value.
func evals(n, idx, value int) []models.Evaluation {
	out := make([]models.Evaluation, n)
	for i := range out {
		v := 0
		if i == idx {
			v = value
		}
		out[i] = models.NewEval(v)
	}
	return out
}

func analyzed(id, opening, white, black string, analysis []models.Evaluation) models.Game {
	return models.Game{
		ID:       id,
		Status:   models.StatusMate,
		Players:  players(white, black),
		Winner:   models.ColorWhite,
		Opening:  &models.Opening{Name: opening},
		Analysis: analysis,
	}
}

// sampleGames mixes every path through both analyses.
func sampleGames() []models.Game {
	return []models.Game{
		decisive("g1", "Sicilian Defense", "dgs3", "opp1", models.ColorWhite),
		decisive("g2", "Sicilian Defense", "opp2", "dgs3", models.ColorWhite),
		drawn("g3", "French Defense", "dgs3", "opp3"),
		{ID: "g4", Status: models.StatusOutOfTime, Players: players("dgs3", "opp4"), Opening: &models.Opening{Name: "French Defense"}},
		{ID: "g5", Status: models.StatusResign, Players: players("dgs3", "opp5"), Winner: models.ColorBlack},
		analyzed("g6", "Italian Game", "dgs3", "opp6", evals(20, 15, 150)),
		analyzed("g7", "Italian Game", "opp7", "dgs3", evals(20, 15, 150)),
		analyzed("g8", "Caro-Kann Defense", "opp8", "dgs3", evals(5, 4, -50)),
		analyzed("g9", "Sicilian Defense", "opp9", "dgs3", evals(30, 15, -300)),
		{ID: "g10", Status: models.StatusTimeout, Players: players("opp10", "dgs3"), Opening: &models.Opening{Name: "Sicilian Defense"}, Analysis: evals(16, 15, 0)},
	}
}
