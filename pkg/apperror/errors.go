package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes grouped by concern: ledger business logic (LED),
// authentication (AUTH), rate limiting (RATE), validation (VAL),
// system and infrastructure (SYS).
const (
	CodeInsufficientBalance  = "LED_001"
	CodeInvalidAmount        = "LED_002"
	CodeSameWallet           = "LED_003"
	CodeCurrencyMismatch     = "LED_004"
	CodeNotFound             = "LED_005"
	CodeWalletExists         = "LED_006"
	CodeDuplicateIdempotency = "LED_007"
	CodeInvalidCredentials   = "AUTH_001"
	CodeUsernameExists       = "AUTH_002"
	CodeInvalidToken         = "AUTH_003"
	CodeRateLimitExceeded    = "RATE_001"
	CodeValidation           = "VAL_001"
	CodeInternal             = "SYS_001"
	CodeStoreUnavailable     = "SYS_002"
	CodeLockTimeout          = "SYS_003"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// IsCode reports whether err is (or wraps) an AppError carrying the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ---- Ledger Business Logic (LED) ----

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be greater than 0", http.StatusBadRequest)
}

func ErrSameWallet() *AppError {
	return New(CodeSameWallet, "Cannot transfer to the same wallet", http.StatusBadRequest)
}

func ErrCurrencyMismatch(from, to string) *AppError {
	return New(CodeCurrencyMismatch,
		fmt.Sprintf("Cannot transfer between different currencies (%s to %s)", from, to),
		http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrWalletExists(currency string) *AppError {
	return New(CodeWalletExists,
		fmt.Sprintf("User already has a %s wallet", currency),
		http.StatusConflict)
}

// ErrDuplicateIdempotencyKey signals a race on the idempotency key unique
// index. The ledger recovers it internally by re-reading and returning the
// existing result; it is never surfaced to callers.
func ErrDuplicateIdempotencyKey() *AppError {
	return New(CodeDuplicateIdempotency, "Idempotency key already used", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New(CodeUsernameExists, "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an unexpected internal error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// ErrStoreUnavailable signals that a ledger transaction could not be
// committed. The caller cannot know whether the mutation landed; retrying
// with the same idempotency key is the documented recovery path.
func ErrStoreUnavailable(err error) *AppError {
	return Wrap(CodeStoreUnavailable, "Ledger store unavailable", http.StatusServiceUnavailable, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap(CodeLockTimeout, "Wallet lock acquisition timeout", http.StatusServiceUnavailable, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}
