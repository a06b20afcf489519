package bank

import "errors"

// Mailbox response types produced by the bank for our commands.
const (
	TypeAccountBalance   = "ACCOUNT_BALANCE"
	TypeAccountStatement = "ACCOUNT_STATEMENT"
	TypePaymentStatus    = "PAYMENT_STATUS_REPORT"
)

// Normalized payment statuses.
const (
	// StatusPending means the payment is submitted but not yet concluded.
	StatusPending = "PENDING"
	// StatusAccepted covers the accepted family of ISO status codes.
	StatusAccepted = "ACCEPTED"
	// StatusRejected means the bank refused the payment.
	StatusRejected = "RJCT"
	// StatusUnknown means an internal failure prevented reading the
	// bank's answer. Distinct from a rejection: the payment may well
	// have succeeded.
	StatusUnknown = "UNKNOWN"
	// StatusFailed means the payment could not be submitted at all.
	StatusFailed = "FAILED"
)

var (
	// ErrValidation marks caller-supplied input rejected before any
	// network call.
	ErrValidation = errors.New("validation failed")
	// ErrNoCorrelationID is returned when the bank assigned no request id
	// to a payment submission. A payment without a trackable id cannot be
	// safely confirmed, so this is fatal for transfers.
	ErrNoCorrelationID = errors.New("bank returned no correlation id")
)

// PaymentStatus is the outcome of a payment operation.
type PaymentStatus struct {
	PaymentID     string
	Status        string
	Message       string
	CorrelationID string
}

// mapStatus normalizes an ISO transaction status code.
func mapStatus(code string) string {
	switch code {
	case "PDNG":
		return StatusPending
	case "ACTC", "ACCP", "ACSP", "ACSC", "ACWC":
		return StatusAccepted
	case "RJCT":
		return StatusRejected
	case "":
		return StatusPending
	default:
		return StatusUnknown
	}
}
