package codegen

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/engine"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"
)

const (
	alphanumericChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	alphanumericLength = 8
)

// Generate returns a fresh code value of the requested kind. Generation is
// pure and side-effect free; the store's unique index, not this function, is
// the uniqueness authority.
func Generate(kind string) (string, error) {
	switch kind {
	case model.CodeKindAlphanumeric:
		return generateAlphanumeric(alphanumericLength), nil
	case model.CodeKindUUID:
		return uuid.NewString(), nil
	default:
		return "", fmt.Errorf("%w: unknown code kind %q", engine.ErrValidation, kind)
	}
}

// generateAlphanumeric draws length characters uniformly from [A-Z0-9] using
// a cryptographically strong source. Bytes >= 252 are rejected so that the
// modulo does not skew the distribution (252 is the largest multiple of 36
// below 256).
func generateAlphanumeric(length int) string {
	result := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(result) < length {
		if _, err := rand.Read(buf); err != nil {
			// In a real application, we would handle this error better
			panic(err)
		}
		for _, b := range buf {
			if b >= 252 {
				continue
			}
			result = append(result, alphanumericChars[int(b)%len(alphanumericChars)])
			if len(result) == length {
				break
			}
		}
	}
	return string(result)
}
