package backup

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/walletport/backup-sdk/types"
)

// ErrParse marks malformed backup content.
var ErrParse = errors.New("parse error")

var importValidationFlags = types.NodeValidationFlags{UseImmediately: true, SaveAsDefault: true}

// Target bundles the collaborators a parsed backup is applied to.
type Target struct {
	Store       types.Store
	Credentials types.CredentialStore
	Validator   types.NodeValidator
}

// StepError reports the step an apply stopped at. Applied tells whether any
// store mutation happened before it; those are not rolled back.
type StepError struct {
	Step    string
	Applied bool
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// applier tracks whether a run already touched the store.
type applier struct {
	target  Target
	applied bool
}

func (a *applier) fail(step string, err error) error {
	return &StepError{Step: step, Applied: a.applied, Err: err}
}

func (a *applier) do(step string, fn func() error) error {
	if err := fn(); err != nil {
		return a.fail(step, err)
	}
	a.applied = true
	return nil
}

// validateNode is fire and forget: a failing node never fails an import.
func (a *applier) validateNode(ctx context.Context, node, chainID string) {
	if a.target.Validator == nil {
		return
	}
	if err := a.target.Validator.ValidateNode(ctx, node, chainID, importValidationFlags); err != nil {
		log.WithError(err).Warnf("node %s failed validation for chain %s", node, chainID)
	}
}
