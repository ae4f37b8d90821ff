package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/qnkhuat/garrison/pkg/journal"
)

const (
	wsWriteWait  = 10 * time.Second
	maxDecisions = 200
)

// AdviseRequest is the body of POST /api/advise. With Place set the piece is
// dropped when the advice is to use it, and the resulting position returned.
type AdviseRequest struct {
	Fen   string `json:"fen"`
	Place bool   `json:"place"`
}

func (s *Server) serveHTTP(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.HTTPAddr,
		Handler:     s.Router(),
		IdleTimeout: s.cfg.IdleTimeout,
	}
	if !s.register(ctx, func() { s.http = srv }) {
		return nil
	}
	s.log.Info().Str("addr", s.cfg.HTTPAddr).Msg("listening for http clients")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router builds the HTTP API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/api/advise", s.handleAdvise)
	r.Get("/api/decisions", s.handleDecisions)
	r.Get("/ws", s.handleWS)
	return r
}

// handleAdvise answers one position without keeping a session around.
func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	var req AdviseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageError{Msg: "invalid payload"})
		return
	}
	session := s.NewSession()
	if _, err := session.Load(req.Fen); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageError{Msg: err.Error()})
		return
	}
	var (
		advice MessageAdvice
		err    error
	)
	if req.Place {
		advice, err = session.AutoPlace(r.Context())
	} else {
		advice, err = session.Advise(r.Context())
	}
	if err != nil && !errors.Is(err, ErrNoPending) {
		writeJSON(w, http.StatusUnprocessableEntity, MessageError{Msg: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, advice)
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, MessageError{Msg: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxDecisions)
	}
	entries, err := s.journal.Recent(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, MessageError{Msg: err.Error()})
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleWS speaks the same envelope protocol as the TCP front door, one JSON
// message per websocket frame.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	session := s.NewSession()
	log := session.log.With().Str("remote", r.RemoteAddr).Logger()
	log.Info().Msg("websocket connected")
	defer log.Info().Msg("websocket disconnected")

	ctx := r.Context()
	for {
		var in MessageTransport
		if err := conn.ReadJSON(&in); err != nil {
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				if werr := writeWS(conn, MessageError{Msg: "malformed message: " + err.Error()}); werr != nil {
					return
				}
				continue
			}
			return
		}
		if err := writeWS(conn, session.Handle(ctx, in)); err != nil {
			log.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}

func writeWS(conn *websocket.Conn, m MessageInterface) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(Wrap(m))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Dur("took", time.Since(start)).
					Msg("http request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
