package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidAmount indicates a zero or negative transfer amount.
var ErrInvalidAmount = errors.New("amount must be positive")

// ErrInsufficientFunds indicates the source wallet balance does not cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrWalletInactive indicates the wallet has been deactivated and cannot move funds.
var ErrWalletInactive = errors.New("wallet is inactive")

// ErrInvalidState indicates a campaign lifecycle or payment-status precondition failed.
var ErrInvalidState = errors.New("operation not allowed in current state")

// ErrContention indicates a row lock or version race exhausted its retries.
// Callers may retry the whole operation.
var ErrContention = errors.New("storage contention, retry later")

// ErrGatewayUnavailable indicates the payment gateway could not be reached or
// answered with a transport-level failure. The corresponding transaction must
// be left PENDING so a late confirmation can still settle it.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrAuthenticationFailed indicates a webhook carried an invalid signature.
var ErrAuthenticationFailed = errors.New("authentication failed")

// ErrForbidden indicates the caller is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
