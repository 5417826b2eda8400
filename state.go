package backupsdk

import (
	"fmt"

	"github.com/walletport/backup-sdk/types"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDetecting
	PhaseNativeImporting
	PhaseAwaitingPassword
	PhaseDecrypting
	PhaseLegacyImporting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	return map[Phase]string{
		PhaseIdle:             "IDLE",
		PhaseDetecting:        "DETECTING",
		PhaseNativeImporting:  "NATIVE_IMPORTING",
		PhaseAwaitingPassword: "AWAITING_PASSWORD",
		PhaseDecrypting:       "DECRYPTING",
		PhaseLegacyImporting:  "LEGACY_IMPORTING",
		PhaseSucceeded:        "SUCCEEDED",
		PhaseFailed:           "FAILED",
	}[p]
}

// Busy reports whether an import is making progress in this phase. UIs show
// their loading indicator while it holds.
func (p Phase) Busy() bool {
	switch p {
	case PhaseDetecting, PhaseNativeImporting, PhaseDecrypting, PhaseLegacyImporting:
		return true
	default:
		return false
	}
}

// State is a snapshot of the importer. It is never mutated once published.
type State struct {
	Phase     Phase
	Format    types.Format
	RunID     string
	Err       *ImportError
	Retryable bool
}

func (s State) String() string {
	if s.Err != nil {
		return fmt.Sprintf("%s(%s): %s", s.Phase, s.Err.Kind, s.Err)
	}
	return s.Phase.String()
}

// WrongPassword is true when the last attempt failed on the password.
func (s State) WrongPassword() bool {
	return s.Err != nil && IsWrongPassword(s.Err)
}
