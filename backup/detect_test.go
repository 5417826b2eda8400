package backup_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/walletport/backup-sdk/backup"
	"github.com/walletport/backup-sdk/types"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected types.Format
	}{
		{
			name:     "native json",
			raw:      `{"networks":[],"wallets":[]}`,
			expected: types.FormatNative,
		},
		{
			name:     "legacy export",
			raw:      `{"iv":"aXY=","salt":"c2FsdA==","ct":"Y3Q="}|x|c2FsdA`,
			expected: types.FormatLegacyEncrypted,
		},
		{
			name:     "legacy export without salt segment",
			raw:      `{"iv":"aXY=","salt":"c2FsdA==","ct":"Y3Q="}|`,
			expected: types.FormatLegacyEncrypted,
		},
		{
			name:     "pipe but head is not json",
			raw:      `not json|x|salt`,
			expected: types.FormatNative,
		},
		{
			name:     "pipe but cipher fields missing",
			raw:      `{"iv":"aXY=","salt":"c2FsdA=="}|x|salt`,
			expected: types.FormatNative,
		},
		{
			name:     "pipe but cipher fields empty",
			raw:      `{"iv":"","salt":"c2FsdA==","ct":"Y3Q="}|x|salt`,
			expected: types.FormatNative,
		},
		{
			name:     "pipe inside native payload",
			raw:      `{"storage":{"schema":"v2.storage","data":{"memo":"a|b"}}}`,
			expected: types.FormatNative,
		},
		{
			name:     "empty",
			raw:      "",
			expected: types.FormatNative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, backup.Detect(tt.raw))
		})
	}
}

func TestSplitLegacy(t *testing.T) {
	t.Run("three parts", func(t *testing.T) {
		env := backup.SplitLegacy(`{"ct":"a"}|unused|c2FsdA`)
		require.Equal(t, `{"ct":"a"}`, env.Ciphertext)
		require.Equal(t, "c2FsdA", env.Salt)
	})

	t.Run("missing salt", func(t *testing.T) {
		env := backup.SplitLegacy(`{"ct":"a"}|unused`)
		require.Equal(t, `{"ct":"a"}`, env.Ciphertext)
		require.Empty(t, env.Salt)
	})
}
