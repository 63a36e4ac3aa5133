package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/repository"
	"github.com/rocketscienceinc/tictactoe-engine/internal/search"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-engine/testing/suite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	manager := usecase.NewGameManager(suite.Logger(), repository.NewMemoryGameRepository(), config.Bot{
		Strategy: search.NameAlphaBeta,
		Depth:    search.DefaultDepth,
	})

	srv := httptest.NewServer(New(suite.Logger(), manager).Router())
	t.Cleanup(srv.Close)

	return srv
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func createGame(t *testing.T, srv *httptest.Server, body string) entity.GameView {
	t.Helper()

	var game entity.GameView
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/games", body, &game))

	return game
}

func TestPing(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateGame(t *testing.T) {
	t.Run("Empty body uses the defaults", func(t *testing.T) {
		srv := newTestServer(t)

		// When: a game is created without a body
		game := createGame(t, srv, "")

		// Then: a single player game against O starts on an empty board
		assert.NotEmpty(t, game.ID)
		assert.Equal(t, entity.ModeSingle, game.Mode)
		assert.Equal(t, entity.PlayerO, game.BotPiece)
		assert.Equal(t, entity.PlayerX, game.Turn)
		assert.False(t, game.Over)
		assert.Len(t, game.LegalMoves, entity.BoardSize)
	})

	t.Run("Bot playing X moves first", func(t *testing.T) {
		srv := newTestServer(t)

		game := createGame(t, srv, `{"bot_piece":"X","strategy":"minimax"}`)

		assert.Equal(t, entity.PlayerX, game.Board[0])
		assert.Equal(t, entity.PlayerO, game.Turn)
		assert.Len(t, game.LegalMoves, entity.BoardSize-1)
	})

	t.Run("Bad requests", func(t *testing.T) {
		srv := newTestServer(t)

		for name, body := range map[string]string{
			"malformed json":   `{"mode":`,
			"unknown mode":     `{"mode":"three"}`,
			"invalid piece":    `{"bot_piece":"Z"}`,
			"unknown strategy": `{"strategy":"negamax"}`,
		} {
			t.Run(name, func(t *testing.T) {
				var resp errorResponse

				status := do(t, http.MethodPost, srv.URL+"/games", body, &resp)

				assert.Equal(t, http.StatusBadRequest, status)
				assert.NotEmpty(t, resp.Error)
			})
		}
	})
}

func TestMakeTurn(t *testing.T) {
	t.Run("Bot replies in the same request", func(t *testing.T) {
		// Given: a new game against the bot
		srv := newTestServer(t)
		game := createGame(t, srv, "")

		// When: X takes a corner by slot
		var updated entity.GameView
		status := do(t, http.MethodPost, srv.URL+"/games/"+game.ID+"/turns", `{"slot":0}`, &updated)

		// Then: the bot has already answered in the centre
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, entity.PlayerX, updated.Board[0])
		assert.Equal(t, entity.PlayerO, updated.Board[4])
		assert.Equal(t, entity.PlayerX, updated.Turn)
	})

	t.Run("Cell by row and column", func(t *testing.T) {
		srv := newTestServer(t)
		game := createGame(t, srv, `{"mode":"two"}`)

		var updated entity.GameView
		status := do(t, http.MethodPost, srv.URL+"/games/"+game.ID+"/turns", `{"row":2,"col":1}`, &updated)

		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, entity.PlayerX, updated.Board[7])
		assert.Equal(t, entity.PlayerO, updated.Turn)
	})

	t.Run("Errors map to status codes", func(t *testing.T) {
		srv := newTestServer(t)
		game := createGame(t, srv, `{"mode":"two"}`)
		turns := srv.URL + "/games/" + game.ID + "/turns"

		require.Equal(t, http.StatusOK, do(t, http.MethodPost, turns, `{"slot":4}`, nil))

		cases := []struct {
			name   string
			url    string
			body   string
			status int
		}{
			{"occupied cell", turns, `{"slot":4}`, http.StatusConflict},
			{"slot off the board", turns, `{"slot":9}`, http.StatusBadRequest},
			{"row off the board", turns, `{"row":3,"col":0}`, http.StatusBadRequest},
			{"missing cell", turns, `{}`, http.StatusBadRequest},
			{"unknown game", srv.URL + "/games/missing/turns", `{"slot":0}`, http.StatusNotFound},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				var resp errorResponse

				assert.Equal(t, tc.status, do(t, http.MethodPost, tc.url, tc.body, &resp))
				assert.NotEmpty(t, resp.Error)
			})
		}
	})

	t.Run("Finished game conflicts", func(t *testing.T) {
		srv := newTestServer(t)
		game := createGame(t, srv, `{"mode":"two"}`)
		turns := srv.URL + "/games/" + game.ID + "/turns"

		var updated entity.GameView
		for _, body := range []string{`{"slot":0}`, `{"slot":3}`, `{"slot":1}`, `{"slot":4}`, `{"slot":2}`} {
			require.Equal(t, http.StatusOK, do(t, http.MethodPost, turns, body, &updated))
		}

		assert.True(t, updated.Over)
		assert.Equal(t, entity.PlayerX, updated.Winner)
		assert.Empty(t, updated.LegalMoves)

		assert.Equal(t, http.StatusConflict, do(t, http.MethodPost, turns, `{"slot":5}`, nil))
	})
}

func TestGameLifecycle(t *testing.T) {
	// Given: a two player game with X on 0 and 1 and O on 4
	srv := newTestServer(t)
	game := createGame(t, srv, `{"mode":"two"}`)
	gameURL := srv.URL + "/games/" + game.ID

	for _, body := range []string{`{"slot":0}`, `{"slot":4}`, `{"slot":1}`} {
		require.Equal(t, http.StatusOK, do(t, http.MethodPost, gameURL+"/turns", body, nil))
	}

	// When: O asks for a hint
	var hint usecase.Hint
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, gameURL+"/hint", "", &hint))

	// Then: the block at 2 is suggested
	assert.Equal(t, 2, hint.Slot)

	// When: the game is read back and reset
	var fetched entity.GameView
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, gameURL, "", &fetched))
	assert.Equal(t, entity.PlayerO, fetched.Turn)

	var reset entity.GameView
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, gameURL+"/reset", "", &reset))
	assert.Len(t, reset.LegalMoves, entity.BoardSize)
	assert.Equal(t, entity.PlayerX, reset.Turn)

	// Then: deleting it makes it unknown
	assert.Equal(t, http.StatusNoContent, do(t, http.MethodDelete, gameURL, "", nil))
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodGet, gameURL, "", nil))
	assert.Equal(t, http.StatusNotFound, do(t, http.MethodDelete, gameURL, "", nil))
}
