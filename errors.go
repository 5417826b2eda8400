package backupsdk

import (
	"context"
	"errors"
	"fmt"

	"github.com/walletport/backup-sdk/backup"
	"github.com/walletport/backup-sdk/internal/crypto"
)

var (
	// ErrWrongPassword is the error a legacy backup opened with the wrong
	// password fails with. Its message is fixed.
	ErrWrongPassword = crypto.ErrCorrupt

	ErrPasswordRequired  = fmt.Errorf("backup is encrypted, password required")
	ErrNoPendingBackup   = fmt.Errorf("no encrypted backup is waiting for a password")
	ErrImportInProgress  = fmt.Errorf("an import is already in progress")
	errMissingStore      = fmt.Errorf("missing store")
	errInvalidKeyWorkers = fmt.Errorf("key workers must be positive")
)

type ErrorKind int

const (
	// FormatAmbiguous and SchemaMismatch never fail a run: the first falls
	// back to the native parser, the second skips a single record.
	FormatAmbiguous ErrorKind = iota
	SchemaMismatch
	KeyDerivation
	Decryption
	Parse
	PartialImportFailure
	Store
	Canceled
)

func (k ErrorKind) String() string {
	switch k {
	case FormatAmbiguous:
		return "FormatAmbiguous"
	case SchemaMismatch:
		return "SchemaMismatch"
	case KeyDerivation:
		return "KeyDerivationError"
	case Decryption:
		return "DecryptionError"
	case Parse:
		return "ParseError"
	case PartialImportFailure:
		return "PartialImportFailure"
	case Store:
		return "StoreError"
	case Canceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ImportError is the error an import run fails with. Retryable is set for
// encrypted backups, whose password can be submitted again.
type ImportError struct {
	Kind      ErrorKind
	Retryable bool
	Err       error
}

func (e *ImportError) Error() string {
	if e.Kind == PartialImportFailure {
		return "partial import: " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// IsWrongPassword tells a wrong password apart from every other failure.
func IsWrongPassword(err error) bool {
	return errors.Is(err, crypto.ErrCorrupt)
}

func newImportError(err error, retryable bool) *ImportError {
	var importErr *ImportError
	if errors.As(err, &importErr) {
		return importErr
	}

	kind := Store
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = Canceled
	case errors.Is(err, crypto.ErrKeyDerivation):
		kind = KeyDerivation
	case errors.Is(err, crypto.ErrCorrupt), errors.Is(err, crypto.ErrInvalidEnvelope):
		kind = Decryption
	case errors.Is(err, backup.ErrParse):
		kind = Parse
	}

	// Whatever the cause, a run that already wrote something is partial.
	var stepErr *backup.StepError
	if errors.As(err, &stepErr) && stepErr.Applied {
		kind = PartialImportFailure
	}

	return &ImportError{Kind: kind, Retryable: retryable, Err: err}
}
