package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the actor's role does not permit the attempted operation.
var ErrForbidden = errors.New("operation forbidden for this role")

// ErrInvalidTransition indicates that no transition rule allows moving the entity
// from its current state to the requested state.
var ErrInvalidTransition = errors.New("invalid state transition")

// ErrInsufficientBalance indicates a debit would drive a ledger balance negative.
var ErrInsufficientBalance = errors.New("insufficient balance")

// ErrConflict indicates a concurrent modification was detected (version mismatch).
// Callers may safely retry the same command; state is re-validated before every write.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrStorageTimeout indicates the storage transaction did not complete in time.
// Retryable, unlike business-rule failures.
var ErrStorageTimeout = errors.New("storage transaction timed out")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
