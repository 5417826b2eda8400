package backupsdk

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/walletport/backup-sdk/types"
)

const (
	defaultUnlockDelay         = 250 * time.Millisecond
	defaultKeyWorkers          = 4
	defaultMaxPasswordAttempts = 1
)

type Option func(*Importer)

// WithNodeValidator sets the collaborator asked to validate the imported
// node. Without one, node validation is skipped.
func WithNodeValidator(validator types.NodeValidator) Option {
	return func(i *Importer) {
		i.validator = validator
	}
}

// WithCredentialStore routes the wallet unlock credential to a store other
// than the one the backup is imported into.
func WithCredentialStore(credentials types.CredentialStore) Option {
	return func(i *Importer) {
		i.credentials = credentials
	}
}

// WithPasswordPrompt makes Import block on prompt for the password of an
// encrypted backup instead of returning ErrPasswordRequired.
func WithPasswordPrompt(prompt types.PasswordPrompt) Option {
	return func(i *Importer) {
		i.prompt = prompt
	}
}

// WithUnlockDelay sets the pause between receiving a password and starting
// decryption, giving UIs time to render a loading state.
func WithUnlockDelay(delay time.Duration) Option {
	return func(i *Importer) {
		i.unlockDelay = delay
	}
}

func WithDefaultChainID(chainID string) Option {
	return func(i *Importer) {
		i.defaultChainID = chainID
	}
}

func WithKeyWorkers(workers int) Option {
	return func(i *Importer) {
		i.keyWorkers = workers
	}
}

// WithMaxPasswordAttempts bounds how many times Import asks the prompt for a
// password before giving up.
func WithMaxPasswordAttempts(attempts int) Option {
	return func(i *Importer) {
		i.maxAttempts = attempts
	}
}

// WithStateListener registers a callback invoked, in order, with every state
// the importer goes through.
func WithStateListener(listener func(State)) Option {
	return func(i *Importer) {
		i.listener = listener
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(i *Importer) {
		i.logger = logger
	}
}
