package bank

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kempu/go-lhvconnect/pkg/mailbox"
	"github.com/kempu/go-lhvconnect/pkg/message"
	"github.com/kempu/go-lhvconnect/pkg/transport"
)

// Config holds per-operation mailbox timeouts.
type Config struct {
	// BalanceTimeout bounds the wait for a balance report.
	BalanceTimeout time.Duration
	// StatementTimeout bounds the wait for a statement. Statements are
	// heavier for the bank to produce, so the default is doubled.
	StatementTimeout time.Duration
	// PaymentAckTimeout is the short wait for an immediate status
	// acknowledgement after submitting a payment.
	PaymentAckTimeout time.Duration
	// ConfirmTimeout is the additional wait used by ConfirmTransfer.
	ConfirmTimeout time.Duration
	// PollInterval is the pause between mailbox polls.
	PollInterval time.Duration
}

// DefaultConfig returns the standard operation timeouts.
func DefaultConfig() *Config {
	return &Config{
		BalanceTimeout:    30 * time.Second,
		StatementTimeout:  60 * time.Second,
		PaymentAckTimeout: 10 * time.Second,
		ConfirmTimeout:    5 * time.Second,
		PollInterval:      time.Second,
	}
}

// Client implements the public bank operations.
type Client struct {
	transport *transport.Client
	poller    *mailbox.Poller
	codec     *message.Codec
	cfg       *Config
	logger    *zap.Logger
}

// NewClient creates a bank client on top of a configured transport. A nil
// cfg uses DefaultConfig; a nil logger disables logging.
func NewClient(t *transport.Client, cfg *Config, logger *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		transport: t,
		poller:    mailbox.NewPoller(mailbox.NewClient(t), logger),
		codec:     message.NewCodec(logger),
		cfg:       cfg,
		logger:    logger,
	}
}

func (c *Client) policy(maxWait time.Duration) mailbox.Policy {
	return mailbox.Policy{MaxWait: maxWait, Interval: c.cfg.PollInterval}
}

// submit posts a command document and returns the per-call result plus
// the correlation id the bank assigned, which may be empty.
func (c *Client) submit(ctx context.Context, path string, doc []byte) (string, error) {
	res, err := c.transport.Do(ctx, http.MethodPost, path, doc, transport.KindXML)
	if err != nil {
		return "", err
	}
	correlationID := res.RequestID()
	if correlationID == "" {
		// Degraded mode: the response can still be found by type alone,
		// but concurrent requests of the same type may cross-deliver.
		c.logger.Warn("bank returned no correlation id, falling back to type-only matching",
			zap.String("path", path))
	}
	return correlationID, nil
}

// GetBalance returns the booked and available balance of the account.
//
// Balance lookup is best-effort UI data: any failure in the chain is
// logged and yields a zero EUR balance instead of an error.
func (c *Client) GetBalance(ctx context.Context, accountIBAN string) message.Balance {
	start := time.Now()
	balance, err := c.getBalance(ctx, accountIBAN)
	if err != nil {
		c.logger.Error("balance lookup failed, returning zero balance",
			zap.String("account", accountIBAN),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return message.ZeroBalance()
	}
	return balance
}

func (c *Client) getBalance(ctx context.Context, accountIBAN string) (message.Balance, error) {
	doc, err := message.NewReportRequest(accountIBAN, message.BalanceReport)
	if err != nil {
		return message.ZeroBalance(), fmt.Errorf("%w: %v", ErrValidation, err)
	}

	correlationID, err := c.submit(ctx, "/account-balance", doc)
	if err != nil {
		return message.ZeroBalance(), err
	}

	payload, found, err := c.poller.Wait(ctx, TypeAccountBalance, correlationID,
		c.policy(c.cfg.BalanceTimeout))
	if err != nil {
		return message.ZeroBalance(), err
	}
	if !found {
		return message.ZeroBalance(), fmt.Errorf("no balance report within %s", c.cfg.BalanceTimeout)
	}

	// A degraded decode already is the zero balance; nothing to add.
	balance, outcome := c.codec.DecodeBalanceReport(payload, accountIBAN)
	if outcome.Degraded {
		c.logger.Warn("balance report degraded", zap.String("reason", outcome.Reason))
	}
	return balance, nil
}

// GetTransactions returns the account's transactions over the period,
// most recent first. Zero dates default to the last 30 days.
//
// Like GetBalance this never fails: the result is empty, never nil, on
// any failure.
func (c *Client) GetTransactions(ctx context.Context, accountIBAN string, from, to time.Time) []message.Transaction {
	start := time.Now()
	transactions, err := c.getTransactions(ctx, accountIBAN, from, to)
	if err != nil {
		c.logger.Error("transaction history lookup failed, returning empty list",
			zap.String("account", accountIBAN),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return []message.Transaction{}
	}
	return transactions
}

func (c *Client) getTransactions(ctx context.Context, accountIBAN string, from, to time.Time) ([]message.Transaction, error) {
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, fmt.Errorf("%w: period start %s is after end %s",
			ErrValidation, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}
	// The bank produces statements for booked history only; a future end
	// date would never be satisfiable within the wait.
	if cutoff := time.Now().Truncate(24*time.Hour).AddDate(0, 0, 1); !to.IsZero() && !to.Before(cutoff) {
		return nil, fmt.Errorf("%w: period end %s is in the future",
			ErrValidation, to.Format("2006-01-02"))
	}

	var opts []message.ReportOption
	if !from.IsZero() || !to.IsZero() {
		opts = append(opts, message.WithPeriod(from, to))
	}
	doc, err := message.NewReportRequest(accountIBAN, message.StatementReport, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	correlationID, err := c.submit(ctx, "/account-statement", doc)
	if err != nil {
		return nil, err
	}

	payload, found, err := c.poller.Wait(ctx, TypeAccountStatement, correlationID,
		c.policy(c.cfg.StatementTimeout))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no statement within %s", c.cfg.StatementTimeout)
	}

	transactions, outcome := c.codec.DecodeStatement(payload)
	if outcome.Degraded {
		c.logger.Warn("statement degraded", zap.String("reason", outcome.Reason))
	}
	return transactions, nil
}

// InitiateTransfer validates and submits a credit transfer, then waits
// briefly for an immediate acknowledgement.
//
// A correlation id is required here: a payment the bank accepted without
// a trackable id cannot be safely confirmed later, so its absence is a
// hard failure. When no acknowledgement arrives within the ack timeout
// the result is a provisional PENDING status carrying the generated
// payment id.
func (c *Client) InitiateTransfer(ctx context.Context, payment message.Payment) (PaymentStatus, error) {
	doc, endToEndID, err := message.NewPaymentRequest(payment)
	if err != nil {
		return PaymentStatus{Status: StatusFailed, Message: err.Error()},
			fmt.Errorf("%w: %v", ErrValidation, err)
	}

	res, err := c.transport.Do(ctx, http.MethodPost, "/payment", doc, transport.KindXML)
	if err != nil {
		return PaymentStatus{PaymentID: endToEndID, Status: StatusFailed, Message: err.Error()}, err
	}

	correlationID := res.RequestID()
	if correlationID == "" {
		c.logger.Error("payment submitted but bank returned no correlation id",
			zap.String("payment_id", endToEndID))
		return PaymentStatus{
			PaymentID: endToEndID,
			Status:    StatusFailed,
			Message:   ErrNoCorrelationID.Error(),
		}, ErrNoCorrelationID
	}

	payload, found, err := c.poller.Wait(ctx, TypePaymentStatus, correlationID,
		c.policy(c.cfg.PaymentAckTimeout))
	if err != nil || !found {
		if err != nil {
			// The payment is already with the bank; a polling failure
			// does not change that.
			c.logger.Warn("payment acknowledgement wait failed",
				zap.String("payment_id", endToEndID), zap.Error(err))
		}
		return PaymentStatus{
			PaymentID:     endToEndID,
			Status:        StatusPending,
			CorrelationID: correlationID,
		}, nil
	}

	report, outcome := c.codec.DecodePaymentStatus(payload, endToEndID)
	if outcome.Degraded {
		return PaymentStatus{
			PaymentID:     endToEndID,
			Status:        StatusUnknown,
			Message:       outcome.Reason,
			CorrelationID: correlationID,
		}, nil
	}

	return PaymentStatus{
		PaymentID:     report.PaymentID,
		Status:        mapStatus(report.Status),
		Message:       report.Reason,
		CorrelationID: correlationID,
	}, nil
}

// ConfirmTransfer waits a short additional period for a status update on
// a previously initiated payment.
//
// No update within the wait means PENDING. An internal failure means
// UNKNOWN, which callers must treat as "don't know", not as a rejection.
func (c *Client) ConfirmTransfer(ctx context.Context, paymentID string) PaymentStatus {
	payload, found, err := c.poller.Wait(ctx, TypePaymentStatus, "",
		c.policy(c.cfg.ConfirmTimeout))
	if err != nil {
		c.logger.Error("payment confirmation wait failed",
			zap.String("payment_id", paymentID), zap.Error(err))
		return PaymentStatus{PaymentID: paymentID, Status: StatusUnknown, Message: err.Error()}
	}
	if !found {
		return PaymentStatus{PaymentID: paymentID, Status: StatusPending}
	}

	report, outcome := c.codec.DecodePaymentStatus(payload, paymentID)
	if outcome.Degraded {
		return PaymentStatus{PaymentID: paymentID, Status: StatusUnknown, Message: outcome.Reason}
	}

	return PaymentStatus{
		PaymentID: report.PaymentID,
		Status:    mapStatus(report.Status),
		Message:   report.Reason,
	}
}
