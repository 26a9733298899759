package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/planwise/planner-bot/internal/idempotency"
)

// dedupeTTL keeps replayed responses long enough to cover client retry storms.
const dedupeTTL = 10 * time.Minute

type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// bufferedWriter captures the handler's response so it can be cached.
type bufferedWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newBufferedWriter() *bufferedWriter {
	return &bufferedWriter{header: make(http.Header), status: http.StatusOK}
}

func (w *bufferedWriter) Header() http.Header { return w.header }

func (w *bufferedWriter) WriteHeader(status int) { w.status = status }

func (w *bufferedWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

// WithDeduplication wraps the webhook handler so a byte-identical payload
// posted twice applies once and replays the first response. A broken dedupe
// backend degrades to direct processing; losing dedupe beats losing ingestion.
func WithDeduplication(next http.Handler, manager idempotency.Manager, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, response{Success: false, Error: "invalid payload"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		key := idempotency.GenerateKey(r.URL.Path, string(body))

		result, err := manager.Execute(r.Context(), key, dedupeTTL, func(context.Context) ([]byte, error) {
			rec := newBufferedWriter()
			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(rec, r)
			return json.Marshal(cachedResponse{Status: rec.status, Body: rec.buf.Bytes()})
		})
		if err != nil {
			if err == idempotency.ErrRequestInProgress {
				writeJSON(w, http.StatusConflict, response{Success: false, Error: "request already in progress"})
				return
			}
			log.Warn("webhook dedupe unavailable, processing directly", slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		var cached cachedResponse
		if err := json.Unmarshal(result.Response, &cached); err != nil {
			log.Error("corrupt cached webhook response", slog.Any("error", err))
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(cached.Status)
		_, _ = w.Write(cached.Body)
	})
}
