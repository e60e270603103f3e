package services_test

import (
	"context"
	"testing"
	"time"

	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/openingstats/internal/errors"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/services"
	"github.com/vytor/openingstats/internal/testutil"
	"github.com/vytor/openingstats/internal/testutil/mocks"
)

type importFixture struct {
	players *mocks.MockPlayerRepository
	games   *mocks.MockGameRepository
	imports *mocks.MockImportRepository
	source  *mocks.MockGameSource
	svc     services.ImportService
}

func newImportFixture() *importFixture {
	f := &importFixture{
		players: new(mocks.MockPlayerRepository),
		games:   new(mocks.MockGameRepository),
		imports: new(mocks.MockImportRepository),
		source:  &mocks.MockGameSource{SourceName: models.SourceLichess},
	}
	f.svc = services.NewImportService(f.players, f.games, f.imports, services.NewSources(f.source))
	return f
}

func (f *importFixture) assertExpectations(t *testing.T) {
	f.players.AssertExpectations(t)
	f.games.AssertExpectations(t)
	f.imports.AssertExpectations(t)
	f.source.AssertExpectations(t)
}

func TestImport_Incremental(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture()

	lastSync := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	player := &models.Player{ID: 7, Username: "dgs3", LastSyncAt: &lastSync}
	fetched := []models.Game{
		testutil.Game("old", "dgs3", "x", models.StatusDraw, models.ColorUnknown, "A"),
		testutil.Game("new", "dgs3", "x", models.StatusMate, models.ColorWhite, "B"),
		testutil.Game("new", "dgs3", "x", models.StatusMate, models.ColorWhite, "B"),
	}

	f.players.On("Upsert", ctx, "dgs3").Return(player, nil)
	f.imports.On("Create", ctx, mock.MatchedBy(func(r models.ImportRun) bool {
		return r.PlayerID == 7 && r.Source == models.SourceLichess && r.Status == models.ImportRunning
	})).Return(&models.ImportRun{ID: "run-1", PlayerID: 7, Source: models.SourceLichess, Status: models.ImportRunning}, nil)
	f.source.On("FetchGames", ctx, "dgs3", &lastSync).Return(fetched, nil)
	f.games.On("ExistingIDs", ctx, int64(7), models.SourceLichess).Return(map[string]bool{"old": true}, nil)
	f.games.On("InsertBatch", ctx, int64(7), mock.MatchedBy(func(gs []models.Game) bool {
		return len(gs) == 1 && gs[0].ID == "new"
	})).Return(1, nil)
	f.players.On("UpdateSync", ctx, int64(7), mock.AnythingOfType("time.Time")).Return(nil)
	f.imports.On("Finish", ctx, mock.MatchedBy(func(r models.ImportRun) bool {
		return r.ID == "run-1" && r.Status == models.ImportCompleted && r.GamesFetched == 3 && r.GamesInserted == 1
	})).Return(nil)

	run, err := f.svc.Import(ctx, models.ImportRequest{Username: "dgs3", Source: models.SourceLichess})
	require.NoError(t, err)
	assert.Equal(t, models.ImportCompleted, run.Status)
	assert.Equal(t, 1, run.GamesInserted)
	f.assertExpectations(t)
}

func TestImport_FullIgnoresLastSync(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture()

	lastSync := time.Now()
	f.players.On("Upsert", ctx, "dgs3").Return(&models.Player{ID: 1, Username: "dgs3", LastSyncAt: &lastSync}, nil)
	f.imports.On("Create", ctx, mock.Anything).Return(&models.ImportRun{ID: "r"}, nil)
	f.source.On("FetchGames", ctx, "dgs3", (*time.Time)(nil)).Return([]models.Game{}, nil)
	f.games.On("ExistingIDs", ctx, int64(1), models.SourceLichess).Return(map[string]bool{}, nil)
	f.games.On("InsertBatch", ctx, int64(1), []models.Game{}).Return(0, nil)
	f.players.On("UpdateSync", ctx, int64(1), mock.Anything).Return(nil)
	f.imports.On("Finish", ctx, mock.Anything).Return(nil)

	_, err := f.svc.Import(ctx, models.ImportRequest{Username: "dgs3", Full: true})
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestImport_FetchFailureRecorded(t *testing.T) {
	ctx := context.Background()
	f := newImportFixture()

	f.players.On("Upsert", ctx, "dgs3").Return(&models.Player{ID: 1, Username: "dgs3"}, nil)
	f.imports.On("Create", ctx, mock.Anything).Return(&models.ImportRun{ID: "r"}, nil)
	f.source.On("FetchGames", ctx, "dgs3", (*time.Time)(nil)).Return(nil, cerrors.New("export status 503"))
	f.imports.On("Finish", ctx, mock.MatchedBy(func(r models.ImportRun) bool {
		return r.Status == models.ImportFailed && r.Error == "export status 503"
	})).Return(nil)

	run, err := f.svc.Import(ctx, models.ImportRequest{Username: "dgs3"})
	require.Error(t, err)
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInternal, appErr.Code)
	assert.Equal(t, models.ImportFailed, run.Status)
	f.players.AssertNotCalled(t, "UpdateSync", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestImport_RequestErrors(t *testing.T) {
	tests := []struct {
		name string
		req  models.ImportRequest
		code string
	}{
		{"empty username", models.ImportRequest{Username: " "}, errors.ErrCodeValidation},
		{"unknown source", models.ImportRequest{Username: "dgs3", Source: "fics"}, errors.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newImportFixture()
			_, err := f.svc.Import(context.Background(), tt.req)
			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
			f.players.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}
