package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

type gameManager interface {
	CreateGame(ctx context.Context, params usecase.CreateParams) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	PlayTurn(ctx context.Context, id string, slot int) (*entity.Game, error)
	Hint(ctx context.Context, id string) (usecase.Hint, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type Server struct {
	logger      *slog.Logger
	gameManager gameManager
}

func New(logger *slog.Logger, gameManager gameManager) *Server {
	return &Server{
		logger:      logger.With("component", "rest"),
		gameManager: gameManager,
	}
}

// Router - builds the HTTP routes of the game API.
func (that *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(that.requestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/ping", that.PingHandler)

	router.Route("/games", func(r chi.Router) {
		r.Post("/", that.createGame)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", that.getGame)
			r.Delete("/", that.deleteGame)
			r.Post("/turns", that.makeTurn)
			r.Post("/reset", that.resetGame)
			r.Get("/hint", that.hint)
		})
	})

	return router
}

// Start - serves the API on port until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		that.logger.Debug("request served",
			"requestID", middleware.GetReqID(r.Context()),
			"httpMethod", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(started),
		)
	})
}
