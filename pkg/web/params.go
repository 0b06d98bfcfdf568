package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// QueryString returns the raw value of a query parameter and whether it
// was supplied at all. An absent parameter is not an error.
func QueryString(r *http.Request, key string) (string, bool) {
	if !r.URL.Query().Has(key) {
		return "", false
	}
	return r.URL.Query().Get(key), true
}

// ParseOptionalBool parses an optional boolean query parameter.
// Returns (nil, true) when the parameter is absent, a pointer to the
// parsed value on success, and responds 400 on an unparsable value.
func ParseOptionalBool(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string) (*bool, bool) {
	value, present := QueryString(r, key)
	if !present {
		return nil, true
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid boolean value for %s: %s", key, value))
		return nil, false
	}
	return &parsed, true
}
