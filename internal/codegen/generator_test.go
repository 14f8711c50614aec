package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/engine"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAlphanumeric(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Generate(model.CodeKindAlphanumeric)
		require.NoError(t, err)
		assert.Len(t, code, 8)
		for _, r := range code {
			assert.Contains(t, alphanumericChars, string(r), "character outside [A-Z0-9]: %q", code)
		}
	}
}

func TestGenerateUUID(t *testing.T) {
	code, err := Generate(model.CodeKindUUID)
	require.NoError(t, err)

	parsed, err := uuid.Parse(code)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestGenerateUnknownKind(t *testing.T) {
	_, err := Generate("barcode")
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrValidation))
}

func TestGenerateDistinctValues(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := Generate(model.CodeKindAlphanumeric)
		require.NoError(t, err)
		assert.False(t, seen[code], "generated a duplicate within 1000 draws: %s", code)
		seen[code] = true
	}
}

func TestGenerateAlphanumericUppercase(t *testing.T) {
	code, err := Generate(model.CodeKindAlphanumeric)
	require.NoError(t, err)
	assert.Equal(t, strings.ToUpper(code), code)
}
