package httputil

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"terraai/internal/domain"
)

// MaxJSONBody bounds JSON request bodies; project saves carry whole file sets.
const MaxJSONBody = 10 << 20

// ParseJSON decodes the request body into dest. Decoding problems are
// reported as domain.ErrValidation.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", domain.ErrValidation, err)
	}
	return nil
}

// PathParam returns a trimmed path wildcard, or a validation error if it
// is empty.
func PathParam(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.PathValue(name))
	if v == "" {
		return "", fmt.Errorf("%w: missing path parameter %q", domain.ErrValidation, name)
	}
	return v, nil
}
