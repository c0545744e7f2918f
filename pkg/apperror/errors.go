package apperror

import (
	"errors"
	"fmt"
	"net/http"
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

// HasCode reports whether err is an *AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// ---- Wallet custody (WAL) ----

func ErrWalletNotFound(handle string) *AppError {
	return New("WAL_001", fmt.Sprintf("wallet not found for agent %q", handle), http.StatusNotFound)
}

func ErrWalletExists(handle string) *AppError {
	return New("WAL_002", fmt.Sprintf("agent %q already has a wallet", handle), http.StatusConflict)
}

func ErrInvalidHandle() *AppError {
	return New("WAL_003", "Invalid agent handle", http.StatusBadRequest)
}

// ---- Chain (CHN) and signatures (SIG) ----

func ErrChainUnavailable() *AppError {
	return New("CHN_001", "Chain connectivity is not configured", http.StatusServiceUnavailable)
}

func ErrChainTxFailed(err error) *AppError {
	return Wrap("CHN_002", "On-chain transaction failed", http.StatusBadGateway, err)
}

func ErrChainReadFailed(err error) *AppError {
	return Wrap("CHN_003", "On-chain read failed", http.StatusBadGateway, err)
}

func ErrSignatureFailed(err error) *AppError {
	return Wrap("SIG_001", "Permit signature generation failed", http.StatusBadGateway, err)
}

// ---- Transfers (TRF) ----

func ErrInvalidAmount() *AppError {
	return New("TRF_001", "Invalid amount", http.StatusBadRequest)
}

func ErrDuplicateTransfer() *AppError {
	return New("TRF_002", "Transfer reference already used", http.StatusConflict)
}

func ErrInvalidDestination() *AppError {
	return New("TRF_003", "Invalid transfer destination", http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrLockTimeout(err error) *AppError {
	return Wrap("SYS_002", "Lock acquisition timeout", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error with a custom message.
func Validation(message string) *AppError {
	return New("REQ_001", message, http.StatusBadRequest)
}
