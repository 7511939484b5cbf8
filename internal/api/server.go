package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pbaille/zhouyi/internal/domain"
	"github.com/pbaille/zhouyi/internal/interpret"
	"github.com/pbaille/zhouyi/internal/logging"
	"github.com/pbaille/zhouyi/internal/oracle"
	"github.com/pbaille/zhouyi/internal/sessions"
	"github.com/pbaille/zhouyi/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// History is the read side of the reading history
type History interface {
	FindReading(prefix string) (*domain.Reading, error)
	ListReadings(limit, offset int) ([]domain.Reading, error)
	SearchReadings(query string, limit int) ([]domain.Reading, error)
}

// Server handles HTTP requests for the oracle API
type Server struct {
	sessions *sessions.Manager
	history  History
	gatherer prometheus.Gatherer
	language oracle.Language
	logger   *slog.Logger
	addr     string
}

// Option configures a Server
type Option func(*Server)

// WithHistory enables the /readings routes
func WithHistory(h History) Option {
	return func(s *Server) { s.history = h }
}

// WithGatherer sets where /metrics reads from
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLanguage sets the language for sessions created without one
func WithLanguage(lang oracle.Language) Option {
	return func(s *Server) { s.language = lang }
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New creates a new API server
func New(m *sessions.Manager, addr string, opts ...Option) *Server {
	s := &Server{
		sessions: m,
		gatherer: prometheus.DefaultGatherer,
		language: oracle.English,
		logger:   logging.NewNop(),
		addr:     addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(withCORS)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Tables
	r.Get("/trigrams", s.listTrigrams)
	r.Get("/hexagrams", s.listHexagrams)
	r.Get("/hexagrams/{ref}", s.getHexagram)

	// Sessions
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/language", s.setLanguage)
			r.Post("/question", s.confirmQuestion)
			r.Post("/cast", s.cast)
			r.Post("/reset", s.reset)
			r.Post("/interpretation", s.interpret)
		})
	})

	// History
	r.Get("/readings", s.listReadings)
	r.Get("/readings/{id}", s.getReading)

	return r
}

// Run starts the HTTP server and stops it when ctx is done
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// withCORS adds CORS headers for frontend development
func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HexagramResponse is a hexagram with its trigrams
type HexagramResponse struct {
	oracle.Hexagram
	Lower oracle.Trigram `json:"lower"`
	Upper oracle.Trigram `json:"upper"`
}

func hexagramResponse(h oracle.Hexagram) HexagramResponse {
	return HexagramResponse{Hexagram: h, Lower: h.Lower(), Upper: h.Upper()}
}

func (s *Server) listTrigrams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trigrams": oracle.Trigrams(),
	})
}

func (s *Server) listHexagrams(w http.ResponseWriter, r *http.Request) {
	all := oracle.Hexagrams()
	resp := make([]HexagramResponse, len(all))
	for i, h := range all {
		resp[i] = hexagramResponse(h)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hexagrams": resp,
	})
}

func (s *Server) getHexagram(w http.ResponseWriter, r *http.Request) {
	h, err := LookupRef(chi.URLParam(r, "ref"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hexagramResponse(h))
}

// LookupRef finds a hexagram by King Wen number or six-line binary key
func LookupRef(ref string) (oracle.Hexagram, error) {
	ref = strings.TrimSpace(ref)
	if len(ref) != oracle.LinesPerHexagram {
		if n, err := strconv.Atoi(ref); err == nil {
			if h, ok := oracle.HexagramByNumber(n); ok {
				return h, nil
			}
		}
	}
	return oracle.LookupHexagram(ref)
}

// SessionResponse is a stored session plus its resolved result
type SessionResponse struct {
	*sessions.Record
	Result *oracle.Result `json:"result,omitempty"`
}

func sessionResponse(rec *sessions.Record) SessionResponse {
	resp := SessionResponse{Record: rec}
	if rec.Session.Phase == oracle.Resolved {
		if r, err := oracle.Resolve(rec.Session.Lines); err == nil {
			r.Question = rec.Session.Question
			resp.Result = &r
		}
	}
	return resp
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Language string `json:"language,omitempty"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	lang := s.language
	if req.Language != "" {
		lang = oracle.ParseLanguage(req.Language)
	}

	rec, err := s.sessions.Create(r.Context(), lang)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(rec))
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": ids,
	})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(rec))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LanguageRequest is the request body for switching a session's language
type LanguageRequest struct {
	Language string `json:"language"`
}

func (s *Server) setLanguage(w http.ResponseWriter, r *http.Request) {
	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Language) == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}

	rec, err := s.sessions.SetLanguage(r.Context(), chi.URLParam(r, "id"), oracle.ParseLanguage(req.Language))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(rec))
}

// QuestionRequest is the request body for confirming a question
type QuestionRequest struct {
	Question string `json:"question"`
}

func (s *Server) confirmQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.sessions.ConfirmQuestion(r.Context(), chi.URLParam(r, "id"), req.Question)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(rec))
}

// CastRequest is the optional request body for a cast. Total records a
// line cast elsewhere instead of tossing.
type CastRequest struct {
	Total *int `json:"total,omitempty"`
}

// CastResponse is the response for a cast
type CastResponse struct {
	Session  SessionResponse `json:"session"`
	Line     oracle.Line     `json:"line"`
	Type     string          `json:"type"`
	Glyph    string          `json:"glyph"`
	Position int             `json:"position"`
}

func (s *Server) cast(w http.ResponseWriter, r *http.Request) {
	var req CastRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	var (
		rec  *sessions.Record
		line oracle.Line
		err  error
	)
	id := chi.URLParam(r, "id")
	if req.Total != nil {
		rec, line, err = s.sessions.RecordTotal(r.Context(), id, *req.Total)
	} else {
		rec, line, err = s.sessions.Cast(r.Context(), id)
	}
	if err != nil {
		s.writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CastResponse{
		Session:  sessionResponse(rec),
		Line:     line,
		Type:     line.Type().Name(rec.Session.Language),
		Glyph:    line.Type().Glyph(),
		Position: len(rec.Session.Lines),
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(rec))
}

func (s *Server) interpret(w http.ResponseWriter, r *http.Request) {
	rec, err := s.sessions.Interpret(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if rec != nil {
			// The failure is recorded on the session; report it alongside.
			writeJSON(w, statusFor(err), map[string]interface{}{
				"error":   err.Error(),
				"session": sessionResponse(rec),
			})
			return
		}
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(rec))
}

func (s *Server) listReadings(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}

	limit := 20
	offset := 0

	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	var (
		readings []domain.Reading
		err      error
	)
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query != "" {
		readings, err = s.history.SearchReadings(query, limit)
	} else {
		readings, err = s.history.ListReadings(limit, offset)
	}
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if readings == nil {
		readings = []domain.Reading{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"readings": readings,
		"limit":    limit,
		"offset":   offset,
		"query":    query,
	})
}

func (s *Server) getReading(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history is not enabled")
		return
	}

	// Support prefix matching
	reading, err := s.history.FindReading(chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// decodeOptional decodes a JSON body that may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func statusFor(err error) int {
	var perr *interpret.ProviderError
	switch {
	case errors.Is(err, sessions.ErrSessionNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, oracle.ErrUnknownKey):
		return http.StatusNotFound
	case errors.Is(err, oracle.ErrEmptyQuestion),
		errors.Is(err, oracle.ErrInvalidTotal),
		errors.Is(err, oracle.ErrInvalidCoin):
		return http.StatusBadRequest
	case errors.Is(err, oracle.ErrWrongPhase),
		errors.Is(err, oracle.ErrSessionComplete),
		errors.Is(err, oracle.ErrCastInFlight),
		errors.Is(err, oracle.ErrNotResolved),
		errors.Is(err, sessions.ErrSessionChanged),
		errors.Is(err, store.ErrAmbiguousPrefix):
		return http.StatusConflict
	case errors.As(err, &perr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
