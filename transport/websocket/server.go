package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-engine/internal/config"
	"github.com/rocketscienceinc/tictactoe-engine/internal/entity"
	"github.com/rocketscienceinc/tictactoe-engine/internal/usecase"
)

const (
	pingInterval    = 30 * time.Second
	pongWait        = 2 * pingInterval
	writeWait       = 10 * time.Second
	maxMessageSize  = 4096
	sendBufferSize  = 16
	shutdownTimeout = 5 * time.Second
)

type gameManager interface {
	CreateGame(ctx context.Context, params usecase.CreateParams) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeTurn(ctx context.Context, id string, slot int) (*entity.Game, error)
	BotTurn(ctx context.Context, id string) (*entity.Game, error)
	Hint(ctx context.Context, id string) (usecase.Hint, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, msg *Message, client *client) error

type Server struct {
	logger      *slog.Logger
	gameManager gameManager

	moveDelay  time.Duration
	resetDelay time.Duration

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc

	// scheduled bot replies and resets
	jobs sync.WaitGroup
}

func New(logger *slog.Logger, gameManager gameManager, bot config.Bot) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameManager: gameManager,

		moveDelay:  bot.MoveDelay,
		resetDelay: bot.ResetDelay,

		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameNew] = server.handleNewGame
	server.handlers[actionGameJoin] = server.handleJoinGame
	server.handlers[actionGameTurn] = server.handleGameTurn
	server.handlers[actionGameReset] = server.handleGameReset
	server.handlers[actionGameHint] = server.handleGameHint

	return server
}

func (that *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start - starts WebSocket server. Open connections are closed when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Router(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
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

	that.jobs.Wait()

	return nil
}

// serveWS - upgrades the connection and processes messages until the client leaves.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := newClient(ctx, conn)

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer cancel()
		if writeErr := client.writeLoop(); writeErr != nil {
			log.Debug("stopped writing to client", "error", writeErr)
		}
	}()

	log.Info("WebSocket connection established", "remote", r.RemoteAddr)

	if err = that.handleMessages(ctx, client); err != nil {
		log.Debug("connection closed", "error", err)
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, client *client) error {
	log := that.logger.With("method", "handleMessages")

	client.conn.SetReadLimit(maxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := client.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendError(client, actionError, ErrMalformedMessage)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendError(client, message.Action, fmt.Errorf("%w: %q", ErrUnknownAction, message.Action))
			continue
		}

		if err = handler(ctx, &message, client); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// schedule - runs job after delay unless the connection goes away first.
func (that *Server) schedule(ctx context.Context, delay time.Duration, job func(ctx context.Context)) {
	if ctx.Err() != nil {
		return
	}

	that.jobs.Add(1)

	go func() {
		defer that.jobs.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		job(ctx)
	}()
}

func (that *Server) send(client *client, action string, payload ResponsePayload) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "method", "send", "action", action, "error", err)
		return
	}

	client.push(data)
}

func (that *Server) sendError(client *client, action string, err error) {
	that.send(client, action, ResponsePayload{Error: err.Error()})
}

// client serialises writes to one connection through its send queue.
type client struct {
	ctx  context.Context
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	gameID string
}

func newClient(ctx context.Context, conn *websocket.Conn) *client {
	return &client{
		ctx:  ctx,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
}

func (that *client) push(data []byte) {
	select {
	case that.send <- data:
	case <-that.ctx.Done():
	}
}

func (that *client) writeLoop() error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-that.ctx.Done():
			return nil
		case data := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return fmt.Errorf("failed to write message: %w", err)
			}
		case <-ticker.C:
			if err := that.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to write ping: %w", err)
			}
		}
	}
}

func (that *client) currentGame() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.gameID
}

func (that *client) setGame(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.gameID = id
}
