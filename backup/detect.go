package backup

import (
	"encoding/json"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/walletport/backup-sdk/types"
)

const legacySeparator = "|"

// Detect classifies raw backup text. It is a heuristic: anything that does
// not look like a legacy encrypted export is treated as a native backup and
// left for the native parser to reject.
func Detect(raw string) types.Format {
	if !strings.Contains(raw, legacySeparator) {
		return types.FormatNative
	}

	head, _, _ := strings.Cut(raw, legacySeparator)
	var probe map[string]any
	if err := json.Unmarshal([]byte(head), &probe); err != nil {
		log.Debugf("pipe delimited backup without json header, falling back to native: %s", err)
		return types.FormatNative
	}

	if truthy(probe["iv"]) && truthy(probe["salt"]) && truthy(probe["ct"]) {
		return types.FormatLegacyEncrypted
	}

	log.Debug("pipe delimited backup without cipher fields, falling back to native")
	return types.FormatNative
}

// LegacyEnvelope is a legacy export split into its parts:
// <ciphertext json>|<unused>|<salt>.
type LegacyEnvelope struct {
	Ciphertext string
	Salt       string
}

// SplitLegacy never fails: a missing salt surfaces as a key derivation
// error once the password is known.
func SplitLegacy(raw string) LegacyEnvelope {
	parts := strings.Split(raw, legacySeparator)
	env := LegacyEnvelope{Ciphertext: parts[0]}
	if len(parts) > 2 {
		env.Salt = parts[2]
	}
	return env
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	default:
		return true
	}
}
