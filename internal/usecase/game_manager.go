package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-engine/internal/search"
)

var (
	ErrGameIDGeneration = errors.New("failed to generate game id")
	ErrIllegalBotMove   = errors.New("bot chose an illegal move")
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

// CreateParams describes a new game. Zero values fall back to the configured bot.
type CreateParams struct {
	Mode     string       `json:"mode"`
	BotPiece entity.Piece `json:"bot_piece"`
	Strategy string       `json:"strategy"`
	Depth    int          `json:"depth"`
}

// Hint is a suggested move for the player to move.
type Hint struct {
	Slot  int `json:"slot"`
	Score int `json:"score"`
}

// GameManager plays the role of the front end's controller: it owns stored
// games, applies human moves and asks the search strategy for the bot's replies.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	bot        config.Bot
	strategies map[string]search.Strategy
	hinter     *search.AlphaBeta

	locks sync.Map // game id -> *sync.Mutex
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, bot config.Bot) *GameManager {
	strategies := make(map[string]search.Strategy, len(search.Names()))
	for _, name := range search.Names() {
		strategy, err := search.New(name)
		if err != nil {
			panic(fmt.Errorf("registered strategy %q: %w", name, err))
		}
		strategies[name] = strategy
	}

	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,

		bot:        bot,
		strategies: strategies,
		hinter:     search.NewAlphaBeta(),
	}
}

func (that *GameManager) CreateGame(ctx context.Context, params CreateParams) (*entity.Game, error) {
	log := that.logger.With("method", "CreateGame")

	mode := params.Mode
	if mode == "" {
		mode = entity.ModeSingle
	}

	if !entity.ValidMode(mode) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownMode, mode)
	}

	gameID := pkg.GenerateGameID()
	if gameID == "" {
		return nil, ErrGameIDGeneration
	}

	game := entity.NewGame(gameID, mode)

	if game.IsSinglePlayer() {
		if err := that.setupBot(game, params); err != nil {
			return nil, fmt.Errorf("failed to set up bot: %w", err)
		}

		// the bot opens when it plays X
		if game.IsBotTurn() {
			if err := that.botMove(game); err != nil {
				return nil, fmt.Errorf("bot failed to make first turn: %w", err)
			}
		}
	}

	if err := that.updateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "gameID", game.ID, "mode", game.Mode, "bot", game.BotPiece, "strategy", game.Strategy)

	return game, nil
}

func (that *GameManager) setupBot(game *entity.Game, params CreateParams) error {
	botPiece := params.BotPiece
	if botPiece == entity.NoPiece {
		botPiece = entity.PlayerO
	}

	if !botPiece.Valid() {
		return fmt.Errorf("%w: %q", apperror.ErrInvalidPiece, botPiece)
	}

	strategy := params.Strategy
	if strategy == "" {
		strategy = that.bot.Strategy
	}

	if _, ok := that.strategies[strategy]; !ok {
		return fmt.Errorf("%w: %q", search.ErrUnknownStrategy, strategy)
	}

	depth := params.Depth
	if depth <= 0 {
		depth = that.bot.Depth
	}

	game.BotPiece = botPiece
	game.Strategy = strategy
	game.Depth = depth

	return nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	return that.getGameByID(ctx, id)
}

// MakeTurn - applies a human move and stores the game. The bot does not answer;
// callers that want the reply right away use PlayTurn, or BotTurn later.
func (that *GameManager) MakeTurn(ctx context.Context, id string, slot int) (*entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = applyHumanMove(game, slot); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// BotTurn - lets the bot make its move.
func (that *GameManager) BotTurn(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if game.IsFinished() {
		return nil, apperror.ErrGameFinished
	}

	if !game.IsBotTurn() {
		return nil, apperror.ErrNotBotTurn
	}

	if err = that.botMove(game); err != nil {
		return nil, err
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// PlayTurn - applies a human move and, in single player games, the bot's reply.
func (that *GameManager) PlayTurn(ctx context.Context, id string, slot int) (*entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = applyHumanMove(game, slot); err != nil {
		return nil, err
	}

	if game.IsBotTurn() {
		if err = that.botMove(game); err != nil {
			return nil, err
		}
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// Hint - suggests the best move for whoever is to move. Games played against
// the random bot, and two player games, get their hints from alpha-beta.
func (that *GameManager) Hint(ctx context.Context, id string) (Hint, error) {
	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return Hint{}, err
	}

	if game.IsFinished() {
		return Hint{}, apperror.ErrGameFinished
	}

	depth := game.Depth
	if depth <= 0 {
		depth = that.bot.Depth
	}

	var result search.Result
	if game.Strategy == search.NameMinimax {
		result = search.NewMinimax().Search(game.State, game.State.Turn(), depth)
	} else {
		result = that.hinter.Search(game.State, game.State.Turn(), depth)
	}

	return Hint{Slot: result.Slot, Score: result.Score}, nil
}

// ResetGame - clears the board of a game, keeping its mode and bot settings.
func (that *GameManager) ResetGame(ctx context.Context, id string) (*entity.Game, error) {
	unlock := that.lock(id)
	defer unlock()

	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	game.State.Reset()

	if game.IsBotTurn() {
		if err = that.botMove(game); err != nil {
			return nil, err
		}
	}

	if err = that.updateGame(ctx, game); err != nil {
		return nil, err
	}

	that.logger.Info("game reset", "method", "ResetGame", "gameID", id)

	return game, nil
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	unlock := that.lock(id)
	defer func() {
		unlock()
		that.locks.Delete(id)
	}()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "method", "DeleteGame", "gameID", id)

	return nil
}

func applyHumanMove(game *entity.Game, slot int) error {
	if game.IsFinished() {
		return apperror.ErrGameFinished
	}

	if game.IsBotTurn() {
		return apperror.ErrNotYourTurn
	}

	if !entity.ValidSlot(slot) {
		return fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, slot)
	}

	if !game.State.Place(slot) {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, slot)
	}

	return nil
}

func (that *GameManager) botMove(game *entity.Game) error {
	log := that.logger.With("method", "botMove", "gameID", game.ID)

	strategy, ok := that.strategies[game.Strategy]
	if !ok {
		return fmt.Errorf("%w: %q", search.ErrUnknownStrategy, game.Strategy)
	}

	started := time.Now()
	slot := strategy.BestMove(game.State, game.BotPiece, game.Depth)

	if !game.State.Place(slot) {
		return fmt.Errorf("%w: cell %d", ErrIllegalBotMove, slot)
	}

	log.Debug("bot moved", "slot", slot, "strategy", game.Strategy, "took", time.Since(started))

	return nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *GameManager) updateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

// lock serialises the read-modify-write cycle of a single game.
func (that *GameManager) lock(id string) func() {
	mu, _ := that.locks.LoadOrStore(id, &sync.Mutex{})
	gameMu := mu.(*sync.Mutex) //nolint: forcetypeassert // only mutexes are stored

	gameMu.Lock()

	return gameMu.Unlock
}
