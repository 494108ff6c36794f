// Package common defines shared constants and sentinel errors used across
// the switcher's components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Vault-level errors.
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrVaultIO    = errors.New("vault write failed")

	// Crypto errors. Decryption failures are represented as data-level
	// nulls by the vault; this sentinel is for callers that need to
	// distinguish a corrupt payload from an absent one.
	ErrDecryption = errors.New("decryption failed")

	// Remote-service errors. ErrServiceUnavailable marks the "endpoint not
	// found / not yet reachable" condition that drives the party poller's
	// countdown, as opposed to a genuine failure.
	ErrServiceUnavailable = errors.New("service not reachable")

	// Automation errors. All are fatal to the current switch attempt.
	ErrAutomation        = errors.New("automation failed")
	ErrExecutableMissing = errors.New("game executable not found")
	ErrWindowNotDetected = errors.New("login window not detected")
	ErrScriptFailed      = errors.New("scripting host failed")

	// ErrTimeout marks a silent login exceeding its budget. It resolves the
	// login to "no session" rather than surfacing as a failure.
	ErrTimeout = errors.New("timed out")
)
