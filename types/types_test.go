package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/walletport/backup-sdk/types"
)

func TestParseWalletMode(t *testing.T) {
	tests := []struct {
		mode     string
		expected types.WalletMode
	}{
		{"", types.WalletModeHot},
		{"hot", types.WalletModeHot},
		{"key", types.WalletModeHot},
		{"ledger", types.WalletModeHardware},
		{"Hardware", types.WalletModeHardware},
		{"watch", types.WalletModeWatch},
		{" cold ", types.WalletModeCold},
		{"multisig", types.WalletMode("multisig")},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			require.Equal(t, tt.expected, types.ParseWalletMode(tt.mode))
		})
	}
}
