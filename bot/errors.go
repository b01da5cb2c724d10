package bot

import "errors"

// ErrAccessDenied: chat tidak terdaftar atau tidak aktif.
var ErrAccessDenied = errors.New("access denied")

// Penyebab ValidationError.
var (
	ErrBadFormat   = errors.New("bad format")
	ErrNotANumber  = errors.New("not a number")
	ErrNonPositive = errors.New("must be positive")
	ErrNegative    = errors.New("must not be negative")
	ErrTooLong     = errors.New("too long")
	ErrEmpty       = errors.New("empty value")
	ErrEmptyCart   = errors.New("cart is empty")
	ErrOutOfRange  = errors.New("index out of range")
)

// ValidationError adalah input user yang tidak bisa diterima. Details adalah pesan
// yang dikirim balik ke user; state tidak berubah.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	return e.Err.Error() + ": " + e.Details
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, details string) *ValidationError {
	return &ValidationError{Err: err, Details: details}
}
