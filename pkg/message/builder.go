package message

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportKind selects the camt.060 variant to request.
type ReportKind int

const (
	// BalanceReport asks for the account's current balances
	// (proprietary balance type PAYMENT_LIMITS).
	BalanceReport ReportKind = iota
	// StatementReport asks for the transaction history over a period
	// (proprietary balance type DATE).
	StatementReport
)

func (k ReportKind) proprietary() string {
	if k == StatementReport {
		return "DATE"
	}
	return "PAYMENT_LIMITS"
}

func (k ReportKind) requestedMessage() string {
	if k == StatementReport {
		return "camt.053.001.02"
	}
	return "camt.052.001.02"
}

// ReportOption customizes a report request.
type ReportOption func(*reportOptions)

type reportOptions struct {
	from time.Time
	to   time.Time
}

// WithPeriod sets the reporting period. When not given, the period
// defaults to the last 30 days.
func WithPeriod(from, to time.Time) ReportOption {
	return func(o *reportOptions) {
		o.from = from
		o.to = to
	}
}

// NewReportRequest builds a camt.060 account reporting request for the
// given IBAN. The request carries a fresh message id and the current UTC
// timestamp.
func NewReportRequest(iban string, kind ReportKind, opts ...ReportOption) ([]byte, error) {
	if iban == "" {
		return nil, errors.New("account IBAN is required")
	}

	o := reportOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	now := time.Now().UTC()
	if o.to.IsZero() {
		o.to = now
	}
	if o.from.IsZero() {
		o.from = o.to.AddDate(0, 0, -30)
	}

	doc := reportingRequestDocument{
		Xmlns: NsAcctRptgReq,
		Request: reportingRequest{
			GrpHdr: groupHeader{
				MsgID:   uuid.New().String(),
				CreDtTm: now.Format(time.RFC3339),
			},
			RptgReq: reportingReq{
				ID:          uuid.New().String(),
				ReqdMsgNmID: kind.requestedMessage(),
				Acct:        account{ID: accountID{IBAN: iban}},
				RptgPrd: &reportPeriod{
					FrToDt: fromToDate{
						FrDt: o.from.Format("2006-01-02"),
						ToDt: o.to.Format("2006-01-02"),
					},
					Tp: "ALLL",
				},
				ReqdBalTp: balanceType{
					CdOrPrtry: codeOrProprietary{Prtry: kind.proprietary()},
				},
			},
		},
	}

	return marshalDocument(doc)
}

// Payment describes a single credit transfer to initiate.
type Payment struct {
	DebtorName string
	DebtorIBAN string
	// DebtorAddress holds optional postal address lines.
	DebtorAddress []string

	CreditorName    string
	CreditorIBAN    string
	CreditorAddress []string
	// CreditorBIC optionally names the creditor agent. When empty, the
	// bank routes the payment itself.
	CreditorBIC string

	Amount   decimal.Decimal
	Currency string

	// Description is free-form unstructured remittance text. Reference is
	// a structured creditor reference. At most one may be set.
	Description string
	Reference   string

	// EndToEndID is generated when empty.
	EndToEndID string
}

// Validate checks the caller-supplied fields before any document is built
// or any network call made.
func (p Payment) Validate() error {
	if p.DebtorIBAN == "" {
		return errors.New("debtor IBAN is required")
	}
	if p.CreditorIBAN == "" {
		return errors.New("creditor IBAN is required")
	}
	if p.CreditorName == "" {
		return errors.New("creditor name is required")
	}
	if !p.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", p.Amount)
	}
	if p.Description != "" && p.Reference != "" {
		return errors.New("description and structured reference are mutually exclusive")
	}
	return nil
}

// NewPaymentRequest builds a pain.001 credit transfer initiation for a
// single transaction. It returns the document and the end-to-end id under
// which the payment can be tracked if the bank never assigns one.
func NewPaymentRequest(p Payment) ([]byte, string, error) {
	if err := p.Validate(); err != nil {
		return nil, "", err
	}

	endToEndID := p.EndToEndID
	if endToEndID == "" {
		endToEndID = uuid.New().String()
	}
	currency := p.Currency
	if currency == "" {
		currency = "EUR"
	}
	now := time.Now().UTC()
	amount := p.Amount.StringFixed(2)

	tx := creditTransferTx{
		PmtID: paymentID{
			InstrID:    uuid.New().String(),
			EndToEndID: endToEndID,
		},
		Amt: paymentAmount{
			InstdAmt: instructedAmount{Ccy: currency, Value: amount},
		},
		Cdtr: party{
			Nm:      p.CreditorName,
			PstlAdr: addressOf(p.CreditorAddress),
		},
		CdtrAcct: account{ID: accountID{IBAN: p.CreditorIBAN}},
	}
	if p.CreditorBIC != "" {
		tx.CdtrAgt = &agent{FinInstnID: finInstitutionID{BIC: p.CreditorBIC}}
	}
	if p.Reference != "" {
		tx.RmtInf = &remittanceInf{
			Strd: &structuredRmtInf{CdtrRefInf: creditorReference{Ref: p.Reference}},
		}
	} else if p.Description != "" {
		tx.RmtInf = &remittanceInf{Ustrd: []string{p.Description}}
	}

	doc := paymentDocument{
		Xmlns: NsPaymentInit,
		Initn: transferInitn{
			GrpHdr: paymentGroupHeader{
				MsgID:    uuid.New().String(),
				CreDtTm:  now.Format(time.RFC3339),
				NbOfTxs:  "1",
				CtrlSum:  amount,
				InitgPty: party{Nm: p.DebtorName},
			},
			PmtInf: paymentInfo{
				PmtInfID:    uuid.New().String(),
				PmtMtd:      "TRF",
				ReqdExctnDt: now.Format("2006-01-02"),
				Dbtr: party{
					Nm:      p.DebtorName,
					PstlAdr: addressOf(p.DebtorAddress),
				},
				DbtrAcct: account{ID: accountID{IBAN: p.DebtorIBAN}},
				CdtTrfTx: tx,
			},
		},
	}

	data, err := marshalDocument(doc)
	if err != nil {
		return nil, "", err
	}
	return data, endToEndID, nil
}

func addressOf(lines []string) *postalAddress {
	cleaned := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return &postalAddress{AdrLine: cleaned}
}

func marshalDocument(doc any) ([]byte, error) {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append([]byte(xml.Header), data...), nil
}
