package serrors_test

import (
	"errors"
	"fmt"
	"testing"
	"urlextract/pkg/serrors"

	"github.com/stretchr/testify/require"
)

type customError struct{ msg string }

func (e customError) Error() string { return e.msg }

func TestDefaultKindsDistinct(t *testing.T) {
	kinds := []serrors.Kind{
		serrors.ErrNotFound,
		serrors.ErrUnauthorized,
		serrors.ErrMethodNotAllowed,
		serrors.ErrBadRequest,
		serrors.ErrPayloadTooLarge,
		serrors.ErrRateLimited,
		serrors.ErrInternal,
	}
	seen := map[serrors.Kind]bool{}
	for i, k := range kinds {
		require.NotNil(t, k, "kind at index %d is nil", i)
		require.False(t, seen[k], "kind at index %d is duplicate: %v", i, k)
		seen[k] = true
	}
}

func TestErrorFormatting(t *testing.T) {
	base := errors.New("unexpected EOF")

	e1 := serrors.With(serrors.ErrPayloadTooLarge, "text has %d characters", 5000)
	require.Equal(t, "text has 5000 characters", e1.Error(), "With() Error() mismatch")

	e2 := serrors.Wrap(serrors.ErrBadRequest, base, "decoding request")
	require.Equal(t, "decoding request: unexpected EOF", e2.Error(), "Wrap() Error() mismatch")

	e3 := serrors.KindOnly(serrors.ErrRateLimited)
	require.Equal(t, "RATE_LIMITED", e3.Error(), "KindOnly Error() mismatch")

	var nilErr *serrors.Error
	require.Equal(t, "<nil>", nilErr.Error())
}

func TestIsMatchesKindAndWrapped(t *testing.T) {
	base := customError{"root cause"}
	e := serrors.Wrap(serrors.ErrBadRequest, base, "reading")

	require.ErrorIs(t, e, serrors.ErrBadRequest)
	require.ErrorIs(t, e, base)
	require.NotErrorIs(t, e, serrors.ErrUnauthorized, "errors.Is should not match a different kind")
}

func TestAsMatchesKindAndWrapped(t *testing.T) {
	base := &customError{"root cause"}
	e := serrors.Wrap(serrors.ErrBadRequest, base, "reading")

	var k serrors.Kind
	require.ErrorAs(t, e, &k, "errors.As should extract Kind")
	require.Equal(t, serrors.ErrBadRequest, k)

	var ce *customError
	require.ErrorAs(t, e, &ce, "errors.As should extract wrapped error type")
	require.Equal(t, base, ce, "extracted cause pointer mismatch")
}

func TestKindOf(t *testing.T) {
	require.Nil(t, serrors.KindOf(nil))
	require.Equal(t, serrors.ErrInternal, serrors.KindOf(errors.New("plain")))
	require.Equal(t, serrors.ErrPayloadTooLarge, serrors.KindOf(serrors.KindOnly(serrors.ErrPayloadTooLarge)))
	require.Equal(t, serrors.ErrRateLimited, serrors.KindOf(serrors.ErrRateLimited))

	wrapped := fmt.Errorf("could not extract: %w", serrors.With(serrors.ErrBadRequest, "empty text"))
	require.Equal(t, serrors.ErrBadRequest, serrors.KindOf(wrapped))
}

func TestAccessors(t *testing.T) {
	base := errors.New("boom")
	e := serrors.Wrap(serrors.ErrUnauthorized, base, "no token")
	require.Equal(t, serrors.ErrUnauthorized, e.Kind())
	require.Equal(t, "no token", e.Message())
	require.Equal(t, base, e.Cause())
}
