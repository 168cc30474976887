package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Overland-East-Bay/ride-hail-api/internal/ports/out/idempotency"
)

const (
	IdempotencyKeyHeader       = "Idempotency-Key"
	IdempotentReplayedHeader   = "Idempotent-Replayed"
	maxIdempotencyKeyLength    = 255
	idempotencyMetaContentType = "text/plain"
)

// Idempotent wraps a POST handler so retries carrying the same Idempotency-Key
// and body get the original response back. The same key with a different body
// is rejected with 409 IDEMPOTENCY_KEY_REUSE. Only 2xx responses are stored,
// so a failed attempt can be retried with a corrected body under the same key.
func (s *Server) Idempotent(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
		if s.Idem == nil || key == "" {
			next(w, r)
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			writeError(w, r, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", "idempotency key too long", map[string]any{"max": maxIdempotencyKeyLength})
			return
		}

		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, r, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "request body too large", nil)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		bodyHash := hashBody(raw)

		ctx := r.Context()
		metaFP := idempotency.Fingerprint{
			Key:      idempotency.Key(key),
			Method:   r.Method,
			Route:    route,
			BodyHash: "",
		}
		if meta, ok, err := s.Idem.Get(ctx, metaFP); err != nil {
			s.writeAppError(w, r, err)
			return
		} else if ok && string(meta.Body) != bodyHash {
			writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
			return
		}

		respFP := metaFP
		respFP.BodyHash = bodyHash
		if rec, ok, err := s.Idem.Get(ctx, respFP); err != nil {
			s.writeAppError(w, r, err)
			return
		} else if ok {
			s.metrics.IncIdempotentReplay(route)
			if rec.ContentType != "" {
				w.Header().Set("Content-Type", rec.ContentType)
			}
			w.Header().Set(IdempotentReplayedHeader, "true")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}

		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next(cw, r)
		if cw.status < 200 || cw.status > 299 {
			return
		}

		now := time.Now().UTC()
		if err := s.Idem.Put(ctx, metaFP, idempotency.Record{
			StatusCode:  0,
			ContentType: idempotencyMetaContentType,
			Body:        []byte(bodyHash),
			CreatedAt:   now,
		}); err != nil {
			s.logger.WarnContext(ctx, "idempotency store put failed", "route", route, "err", err)
			return
		}
		if err := s.Idem.Put(ctx, respFP, idempotency.Record{
			StatusCode:  cw.status,
			ContentType: cw.Header().Get("Content-Type"),
			Body:        cw.body.Bytes(),
			CreatedAt:   now,
		}); err != nil {
			s.logger.WarnContext(ctx, "idempotency store put failed", "route", route, "err", err)
		}
	}
}

// hashBody hashes a canonical form of the JSON body so key order and
// whitespace do not affect the fingerprint. Non-JSON bodies hash as-is.
func hashBody(raw []byte) string {
	canon := raw
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		if b, err := json.Marshal(v); err == nil {
			canon = b
		}
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:])
}

// captureWriter records status and body while passing them through.
type captureWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	if !c.wroteHeader {
		c.status = status
		c.wroteHeader = true
	}
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
