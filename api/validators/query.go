package validators

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/vendorkyc-backend/pkg/errors"
)

// Query reads bounded values out of a request's query string.
type Query struct {
	values url.Values
}

func QueryFrom(r *http.Request) Query {
	return Query{values: r.URL.Query()}
}

// Int returns def when key is absent and a validation error when it is not an
// integer inside [min, max].
func (q Query) Int(key string, def, min, max int) (int, error) {
	raw := strings.TrimSpace(q.values.Get(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, "must be an integer", nil)
	}
	if value < min || value > max {
		return 0, queryError(key, "out of range", map[string]any{"min": min, "max": max})
	}
	return value, nil
}

// String returns the sanitized value, truncated to maxLen runes.
func (q Query) String(key string, maxLen int) string {
	return SanitizeString(q.values.Get(key), maxLen)
}

func queryError(key, reason string, extra map[string]any) error {
	details := map[string]any{"field": key, "reason": reason}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid query parameter").WithDetails(details)
}
