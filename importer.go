package backupsdk

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/walletport/backup-sdk/backup"
	"github.com/walletport/backup-sdk/internal/crypto"
	"github.com/walletport/backup-sdk/internal/utils"
	"github.com/walletport/backup-sdk/types"
)

// Importer restores wallet backups into a store. It runs one import at a
// time; encrypted backups stay pending until a password unlocks them.
type Importer struct {
	store          types.Store
	validator      types.NodeValidator
	credentials    types.CredentialStore
	prompt         types.PasswordPrompt
	unlockDelay    time.Duration
	defaultChainID string
	keyWorkers     int
	maxAttempts    int
	listener       func(State)
	logger         *log.Logger
	states         *utils.Broadcaster[State]

	lock    *sync.Mutex
	state   State
	running bool
	pending *pendingBackup
}

// pendingBackup is an encrypted backup waiting for its password.
type pendingBackup struct {
	runID    string
	envelope backup.LegacyEnvelope
	log      *log.Entry
}

func NewImporter(store types.Store, opts ...Option) (*Importer, error) {
	if store == nil {
		return nil, errMissingStore
	}

	importer := &Importer{
		store:          store,
		unlockDelay:    defaultUnlockDelay,
		defaultChainID: backup.DefaultChainID,
		keyWorkers:     defaultKeyWorkers,
		maxAttempts:    defaultMaxPasswordAttempts,
		logger:         log.StandardLogger(),
		states:         utils.NewBroadcaster[State](),
		lock:           &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(importer)
	}

	if importer.keyWorkers <= 0 {
		return nil, errInvalidKeyWorkers
	}
	if importer.maxAttempts <= 0 {
		importer.maxAttempts = defaultMaxPasswordAttempts
	}
	if importer.defaultChainID == "" {
		importer.defaultChainID = backup.DefaultChainID
	}

	return importer, nil
}

// State returns the last published state.
func (i *Importer) State() State {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.state
}

// Subscribe returns a channel receiving every state published from now on.
// Subscribers that fall more than buf states behind are dropped and their
// channel closed.
func (i *Importer) Subscribe(buf int) <-chan State {
	return i.states.Subscribe(buf)
}

func (i *Importer) Unsubscribe(ch <-chan State) {
	i.states.Unsubscribe(ch)
}

// Close closes every subscribed channel. The importer keeps working, later
// subscriptions are closed right away.
func (i *Importer) Close() {
	i.states.Close()
}

// ImportFile reads a backup from source and imports it.
func (i *Importer) ImportFile(
	ctx context.Context, source types.BackupSource, pathHint string,
) (*types.Report, error) {
	raw, err := source.ReadBackup(ctx, pathHint)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return i.Import(ctx, raw)
}

// Import detects the format of raw and imports it. Native backups are
// imported right away. Encrypted ones need a password: with a prompt
// configured Import asks for it, otherwise it returns ErrPasswordRequired and
// the caller is expected to call SubmitPassword.
func (i *Importer) Import(ctx context.Context, raw string) (*types.Report, error) {
	if err := i.begin(); err != nil {
		return nil, err
	}
	defer i.end()

	runID := uuid.New().String()
	logger := i.logger.WithField("run", runID)

	i.lock.Lock()
	i.pending = nil
	i.lock.Unlock()

	i.setState(State{Phase: PhaseDetecting, RunID: runID})
	format := backup.Detect(raw)
	logger = logger.WithField("format", format)

	if format == types.FormatNative {
		if strings.Contains(raw, "|") {
			logger.Warnf("%s: pipe delimited backup is not a legacy export", FormatAmbiguous)
		}
		return i.importNative(ctx, runID, raw, logger)
	}

	i.lock.Lock()
	i.pending = &pendingBackup{
		runID:    runID,
		envelope: backup.SplitLegacy(raw),
		log:      logger,
	}
	i.lock.Unlock()
	i.setState(State{
		Phase: PhaseAwaitingPassword, Format: format, RunID: runID, Retryable: true,
	})

	if i.prompt == nil {
		return nil, ErrPasswordRequired
	}
	return i.promptPassword(ctx)
}

// SubmitPassword unlocks the encrypted backup left pending by Import. After a
// failure the backup stays pending, so it can be called again.
func (i *Importer) SubmitPassword(ctx context.Context, password string) (*types.Report, error) {
	if err := i.begin(); err != nil {
		return nil, err
	}
	defer i.end()

	i.lock.Lock()
	pending := i.pending
	i.lock.Unlock()
	if pending == nil {
		return nil, ErrNoPendingBackup
	}

	return i.unlock(ctx, pending, password)
}

func (i *Importer) promptPassword(ctx context.Context) (*types.Report, error) {
	i.lock.Lock()
	pending := i.pending
	i.lock.Unlock()

	var lastErr error
	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		password, err := i.prompt.Password(ctx, attempt, lastErr)
		if err != nil {
			// The backup stays pending for SubmitPassword.
			pending.log.WithError(err).Debug("password prompt aborted")
			i.setState(State{
				Phase: PhaseAwaitingPassword, Format: types.FormatLegacyEncrypted,
				RunID: pending.runID, Retryable: true,
			})
			return nil, err
		}

		report, err := i.unlock(ctx, pending, password)
		if err == nil {
			return report, nil
		}
		lastErr = err
		if !IsWrongPassword(err) {
			break
		}
	}
	return nil, lastErr
}

func (i *Importer) unlock(
	ctx context.Context, pending *pendingBackup, password string,
) (*types.Report, error) {
	logger := pending.log
	state := State{Format: types.FormatLegacyEncrypted, RunID: pending.runID, Retryable: true}

	fail := func(err error) (*types.Report, error) {
		importErr := newImportError(err, true)
		if IsWrongPassword(importErr) {
			logger.Warn("wrong backup password")
		} else {
			logger.WithError(importErr).Errorf("legacy import failed: %s", importErr.Kind)
		}
		state.Phase, state.Err = PhaseFailed, importErr
		i.setState(state)
		return nil, importErr
	}

	state.Phase = PhaseDecrypting
	i.setState(state)

	if err := sleep(ctx, i.unlockDelay); err != nil {
		return fail(err)
	}

	seed, err := crypto.DeriveSeed(ctx, password, pending.envelope.Salt)
	if err != nil {
		return fail(err)
	}
	legacy, err := backup.OpenLegacy(ctx, seed, pending.envelope.Ciphertext)
	if err != nil {
		return fail(err)
	}

	state.Phase = PhaseLegacyImporting
	i.setState(state)

	report := &types.Report{RunID: pending.runID, Format: types.FormatLegacyEncrypted}
	opts := backup.LegacyOptions{KeyWorkers: i.keyWorkers}
	if err := legacy.Apply(ctx, i.target(), password, opts, report); err != nil {
		return fail(err)
	}

	i.lock.Lock()
	i.pending = nil
	i.lock.Unlock()

	logReport(logger, report)
	state.Phase, state.Retryable = PhaseSucceeded, false
	i.setState(state)
	return report, nil
}

func (i *Importer) importNative(
	ctx context.Context, runID, raw string, logger *log.Entry,
) (*types.Report, error) {
	state := State{Phase: PhaseNativeImporting, Format: types.FormatNative, RunID: runID}
	i.setState(state)

	fail := func(err error) (*types.Report, error) {
		importErr := newImportError(err, false)
		logger.WithError(importErr).Errorf("native import failed: %s", importErr.Kind)
		state.Phase, state.Err = PhaseFailed, importErr
		i.setState(state)
		return nil, importErr
	}

	native, err := backup.ParseNative(raw, i.defaultChainID)
	if err != nil {
		return fail(err)
	}
	for _, skipped := range native.Skipped {
		if skipped.Reason == types.SkipUnknownSchema {
			logger.Warnf("%s: %s", SchemaMismatch, skipped)
		}
	}

	report := &types.Report{RunID: runID, Format: types.FormatNative}
	if err := native.Apply(ctx, i.target(), report); err != nil {
		return fail(err)
	}

	logReport(logger, report)
	state.Phase = PhaseSucceeded
	i.setState(state)
	return report, nil
}

func (i *Importer) target() backup.Target {
	return backup.Target{
		Store:       i.store,
		Credentials: i.credentials,
		Validator:   i.validator,
	}
}

func (i *Importer) begin() error {
	i.lock.Lock()
	defer i.lock.Unlock()
	if i.running {
		return ErrImportInProgress
	}
	i.running = true
	return nil
}

func (i *Importer) end() {
	i.lock.Lock()
	defer i.lock.Unlock()
	i.running = false
}

// setState publishes a new state. Only the goroutine running an import calls
// it, so listeners observe transitions in order.
func (i *Importer) setState(state State) {
	i.lock.Lock()
	i.state = state
	listener := i.listener
	i.lock.Unlock()

	if listener != nil {
		listener(state)
	}
	if dropped := i.states.Publish(state); dropped > 0 {
		i.logger.Debugf("dropped %d slow state subscribers", dropped)
	}
}

func logReport(logger *log.Entry, report *types.Report) {
	logger.WithFields(log.Fields{
		"networks":      report.Networks,
		"wallets":       report.Wallets,
		"hardware_keys": report.HardwareKeys,
		"software_keys": report.SoftwareKeys,
		"storage":       report.StorageRestored,
		"settings":      report.SettingsImported,
		"skipped":       len(report.Skipped),
	}).Info("backup imported")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
