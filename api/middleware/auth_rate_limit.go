package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/vendorkyc-backend/api/responses"
	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/vendorkyc-backend/pkg/redis"
)

// maxRateLimitBody bounds how much of a request body is buffered to find the email.
const maxRateLimitBody = 64 << 10

// AuthRateLimitPolicy throttles one public surface (login, register) by
// client IP and by the email in the JSON body. A zero limit disables that
// dimension.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// rateBucket is one counter a request is charged against. Email buckets carry
// the address digest, never the address.
type rateBucket struct {
	kind  string
	value string
	limit int
}

func (p AuthRateLimitPolicy) buckets(r *http.Request) ([]rateBucket, error) {
	var out []rateBucket
	if ip := clientIP(r); p.ipLimit > 0 && ip != "" {
		out = append(out, rateBucket{kind: "ip", value: ip, limit: p.ipLimit})
	}
	if p.emailLimit == 0 {
		return out, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody))
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
	if email := emailFromBody(body); email != "" {
		out = append(out, rateBucket{kind: "email", value: sha256Hex(email), limit: p.emailLimit})
	}
	return out, nil
}

// AuthRateLimit charges each request against its buckets and answers 429 with
// Retry-After once any bucket is over its limit. A limiter failure is a 503.
func AuthRateLimit(policy AuthRateLimitPolicy, limiter pkgredis.RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			buckets, err := policy.buckets(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}

			for _, b := range buckets {
				scope := b.kind + ":" + policy.name + ":" + b.value
				allowed, count, err := limiter.FixedWindowAllow(ctx, scope, int64(b.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if allowed {
					continue
				}
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":   policy.name,
						"scope":    b.kind,
						"key":      b.value,
						"attempts": count,
						"limit":    b.limit,
					}), "auth.rate_limit.blocked")
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers the first parseable X-Forwarded-For hop, then X-Real-IP,
// then the socket peer.
func clientIP(r *http.Request) string {
	candidates := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	candidates = append(candidates, r.Header.Get("X-Real-IP"))
	for _, c := range candidates {
		if addr, err := netip.ParseAddr(strings.TrimSpace(c)); err == nil {
			return addr.String()
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func emailFromBody(payload []byte) string {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Email))
}

func sha256Hex(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
