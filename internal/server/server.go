// Package server exposes the read API over HTTP: health, schema
// introspection, and chunk-streamed query results.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/ChunkRi/internal/database"
	"github.com/koustreak/ChunkRi/internal/errs"
	"github.com/koustreak/ChunkRi/internal/logger"
)

// Server routes HTTP requests onto a database.DB.
type Server struct {
	db        database.DB
	dialect   database.Dialect
	fetchSize int
	log       *logger.Logger
	router    *chi.Mux
}

// New builds a Server around db. dialect selects the placeholder style for
// built queries; fetchSize is the default chunk size for streamed responses
// (zero means database.DefaultFetchSize).
func New(db database.DB, dialect database.Dialect, fetchSize int, log *logger.Logger) *Server {
	s := &Server{db: db, dialect: dialect, fetchSize: fetchSize, log: log}
	if s.fetchSize <= 0 {
		s.fetchSize = database.DefaultFetchSize
	}
	if s.log == nil {
		s.log = logger.New(nil)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/tables", s.handleListTables)
	r.Get("/tables/{table}", s.handleTable)
	r.Post("/query", s.handleQuery)

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// logRequests emits one structured line per request and puts the logger
// into the request context so lower layers can trace against it.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(s.log.WithContext(r.Context())))

		s.log.HTTPEvent().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// --- handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.db.ListTables(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")

	exists, err := s.db.TableExists(r.Context(), table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !exists {
		s.writeError(w, errs.New(errs.ErrKindNotFound, fmt.Sprintf("table %q does not exist", table)))
		return
	}

	info, err := s.db.InspectTable(r.Context(), table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// queryRequest is the body of POST /query.
type queryRequest struct {
	Table     string        `json:"table"`
	Columns   []string      `json:"columns,omitempty"`
	Where     []whereFilter `json:"where,omitempty"`
	OrderBy   []orderSpec   `json:"order_by,omitempty"`
	Limit     *int          `json:"limit,omitempty"`
	ChunkSize int           `json:"chunk_size,omitempty"`
	Stream    bool          `json:"stream,omitempty"`
}

type whereFilter struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  any    `json:"value"`
}

type orderSpec struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errs.Wrap(errs.ErrKindInvalidInput, "decoding request body", err))
		return
	}
	if req.Table == "" {
		s.writeError(w, errs.New(errs.ErrKindInvalidInput, "table is required"))
		return
	}

	b := database.Select(req.Table, s.dialect)
	if len(req.Columns) > 0 {
		b.Columns(req.Columns...)
	}
	for _, f := range req.Where {
		b.Where(f.Column, f.Op, f.Value)
	}
	for _, o := range req.OrderBy {
		dir := database.Asc
		if o.Desc {
			dir = database.Desc
		}
		b.OrderBy(o.Column, dir)
	}
	if req.Limit != nil {
		b.Limit(*req.Limit)
	}

	sql, args, err := b.Build()
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.Stream {
		s.streamQuery(w, r, &req, sql, args)
		return
	}

	rows, err := s.db.Query(r.Context(), sql, args...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	results, err := database.ScanRows(rows)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": results, "count": len(results)})
}

// streamQuery writes the result set as NDJSON, one line per row, flushing
// after every chunk. A slow client stalls the iterator, which in turn
// stops cursor fetches until the client catches up.
func (s *Server) streamQuery(w http.ResponseWriter, r *http.Request, req *queryRequest, sql string, args []any) {
	ctx := r.Context()

	dec, err := s.buildDecoder(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cur, err := s.db.OpenCursor(ctx, sql, args...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer cur.Close(ctx)

	size := req.ChunkSize
	if size <= 0 {
		size = s.fetchSize
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)
	rs := database.NewResultSet(cur)

	n := 0
	for row, streamErr := range database.Stream(ctx, rs, size, dec) {
		if streamErr != nil {
			// Status and headers are already out; log and cut the stream
			// so the client sees a truncated body, not a silent success.
			s.log.ErrorWith("stream aborted", streamErr, map[string]interface{}{
				"table": req.Table,
			})
			return
		}
		if err := enc.Encode(row); err != nil {
			return // client went away
		}
		n++
		if n%size == 0 && flusher != nil {
			flusher.Flush()
		}
	}
	if flusher != nil {
		flusher.Flush()
	}
}

// buildDecoder returns a map decoder covering the requested projection,
// validating every requested column against the table's schema.
func (s *Server) buildDecoder(r *http.Request, req *queryRequest) (database.RowDecoder[map[string]any], error) {
	info, err := s.db.InspectTable(r.Context(), req.Table)
	if err != nil {
		return nil, err
	}
	if len(req.Columns) == 0 {
		return database.NewMapDecoder(info.Columns), nil
	}

	selected := make([]*database.ColumnInfo, len(req.Columns))
	for i, name := range req.Columns {
		col := info.Column(name)
		if col == nil {
			return nil, errs.New(errs.ErrKindInvalidInput,
				fmt.Sprintf("unknown column %q in table %q", name, req.Table))
		}
		selected[i] = col
	}
	return database.NewMapDecoder(selected), nil
}

// --- response helpers ---

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, nil)
	}
	writeJSON(w, status, errorBody(err))
}

func statusFor(err error) int {
	switch {
	case errs.IsNotFound(err):
		return http.StatusNotFound
	case errs.IsInvalidInput(err):
		return http.StatusBadRequest
	case errs.IsPermissionDenied(err):
		return http.StatusForbidden
	case errs.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errs.IsConnectionFailed(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(err error) map[string]string {
	var e *errs.Error
	if errors.As(err, &e) {
		return map[string]string{"error": e.Message, "kind": e.Kind.String()}
	}
	return map[string]string{"error": err.Error()}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
