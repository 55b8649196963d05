package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		ok   bool
	}{
		{"nil", nil, "", false},
		{"domain error", E(CodeFailedPrecond, "executor", "media missing", nil), CodeFailedPrecond, true},
		{"tool not found sentinel", fmt.Errorf("lookup: %w", ErrToolNotFound), CodeNotFound, true},
		{"resource not found sentinel", ErrResourceNotFound, CodeNotFound, true},
		{"media sentinel", ErrMediaNotFound, CodeFailedPrecond, true},
		{"bundle sentinel", ErrBundleUnloadable, CodeUnavailable, true},
		{"plain error", errors.New("nope"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := CodeFrom(tt.err)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.code, code)
		})
	}
}

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := E(CodeNotFound, "", "no such media", nil)
	wrapped := Wrap(CodeInternal, "executor.remove_media", inner)
	require.Equal(t, CodeNotFound, wrapped.Code)
	require.Equal(t, "executor.remove_media", wrapped.Op)
}

func TestErrorString(t *testing.T) {
	err := E(CodeInvalidArgument, "validate", "title too long", nil)
	require.Equal(t, "validate: INVALID_ARGUMENT: title too long", err.Error())
}
