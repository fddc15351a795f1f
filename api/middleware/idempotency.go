package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/vendorkyc-backend/api/responses"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/vendorkyc-backend/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"

	defaultIdempotencyTTL  = 24 * time.Hour
	decisionIdempotencyTTL = 7 * 24 * time.Hour
	// inFlightTTL bounds how long a crashed request can hold its key.
	inFlightTTL = time.Minute
	// maxIdempotentBody matches the JSON decoder cap; guarded routes take JSON only.
	maxIdempotentBody = 1 << 20
)

type idempotencyRule struct {
	method  string
	pattern string
	ttl     time.Duration
	// optional rules replay when a key is sent but do not demand one.
	optional bool
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, pattern: "/api/v1/vendors/register", ttl: defaultIdempotencyTTL, optional: true},
	{method: http.MethodPut, pattern: "/api/v1/admin/vendors/{vendorId}/status", ttl: decisionIdempotencyTTL},
}

// idempotencyRecord is stored twice per key: first as an in-flight marker
// (InFlight set, no response) and then as the settled response.
type idempotencyRecord struct {
	InFlight    bool   `json:"in_flight,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Idempotency guards the routes in idempotencyRules. The first request with a
// key reserves it; repeats replay the settled response, and a repeat that
// arrives while the first is still running gets a 409.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rule, ok := matchRule(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()

			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			if clientKey == "" {
				if rule.optional {
					next.ServeHTTP(w, r)
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, idempotencyHeader+" header required"))
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxIdempotentBody))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "request body too large").
						WithDetails(map[string]any{"limit_bytes": tooLarge.Limit}))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := store.IdempotencyKey(idempotencyScope(r), clientKey)
			hash := fingerprint(r, body)

			reserved, err := reserve(ctx, store, key, hash)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key"))
				return
			}
			if !reserved {
				if err := replay(ctx, store, key, hash, w); err != nil {
					responses.WriteError(ctx, logg, w, err)
				}
				return
			}

			var captured bytes.Buffer
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			ww.Tee(&captured)
			next.ServeHTTP(ww, r)

			settle(ctx, store, logg, key, rule.ttl, idempotencyRecord{
				RequestHash: hash,
				Status:      ww.Status(),
				ContentType: ww.Header().Get("Content-Type"),
				Body:        base64.StdEncoding.EncodeToString(captured.Bytes()),
			})
		})
	}
}

func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, hash string) (bool, error) {
	marker, err := json.Marshal(idempotencyRecord{InFlight: true, RequestHash: hash})
	if err != nil {
		return false, err
	}
	return store.SetNX(ctx, key, string(marker), inFlightTTL)
}

func replay(ctx context.Context, store pkgredis.IdempotencyStore, key, hash string, w http.ResponseWriter) error {
	stored, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, redis.Nil):
		// released between our SETNX and GET; the client may retry immediately
		return pkgerrors.New(pkgerrors.CodeIdempotency, "request with this key is being retried, try again")
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	if record.RequestHash != hash {
		return pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body")
	}
	if record.InFlight {
		return pkgerrors.New(pkgerrors.CodeIdempotency, "request with this key is still in progress")
	}

	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
	return nil
}

// settle stores a replayable outcome or releases the key. 5xx and 409 are not
// settled: the retry has to reach the handler again.
func settle(ctx context.Context, store pkgredis.IdempotencyStore, logg *logger.Logger, key string, ttl time.Duration, record idempotencyRecord) {
	if record.Status == 0 {
		record.Status = http.StatusOK
	}
	if record.Status >= http.StatusInternalServerError || record.Status == http.StatusConflict {
		if err := store.Del(ctx, key); err != nil {
			logError(ctx, logg, "idempotency.release_failed", err)
		}
		return
	}

	payload, err := json.Marshal(record)
	if err == nil {
		err = store.Set(ctx, key, string(payload), ttl)
	}
	if err != nil {
		logError(ctx, logg, "idempotency.persist_failed", err)
	}
}

func idempotencyScope(r *http.Request) string {
	user := UserIDFromContext(r.Context())
	if user == "" {
		user = "anonymous"
	}
	return strings.Join([]string{user, r.Method, r.URL.Path}, "|")
}

func fingerprint(r *http.Request, body []byte) string {
	h := sha256.New()
	h.Write([]byte(r.Method + " " + r.URL.Path + "\n"))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func matchRule(method, pattern string) (idempotencyRule, bool) {
	for _, rule := range idempotencyRules {
		if pattern != "" && rule.method == method && rule.pattern == pattern {
			return rule, true
		}
	}
	return idempotencyRule{}, false
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil && err != nil {
		logg.Error(ctx, msg, err)
	}
}
