package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// classificationOverrides maps known domain.family.subfamily bank
// transaction codes to friendly transaction types. Anything else passes
// through as the raw dotted triple.
var classificationOverrides = map[string]string{
	"PMNT.ICDT.BOOK": TypeInternalTransfer,
	"PMNT.RCDT.BOOK": TypeReceivedTransfer,
	"PMNT.RCDT.ESCT": TypeReceivedTransfer,
	"PMNT.ICDT.STDO": TypeStandingOrder,
	"PMNT.CCRD.POSD": TypeCardPayment,
	"PMNT.ICDT.POSD": TypeCardPayment,
}

// Codec decodes inbound mailbox payloads into normalized records. Decode
// failures never propagate: they are logged with a truncated payload
// excerpt and surface as a degraded Outcome next to the zero value.
type Codec struct {
	logger *zap.Logger
}

// NewCodec creates a codec. A nil logger disables logging.
func NewCodec(logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{logger: logger}
}

// DecodeBalanceReport reads a camt.052 balance report, keeping the
// closing booked (ITBD) and closing available (ITAV) balances. When the
// document carries several account-level reports, the one for accountIBAN
// wins; an empty or unmatched accountIBAN falls back to the first report.
// A debit indicator negates the magnitude. Missing balances default to
// zero EUR.
func (c *Codec) DecodeBalanceReport(payload []byte, accountIBAN string) (Balance, Outcome) {
	doc, err := parseDocument(payload)
	if err != nil {
		return ZeroBalance(), c.degrade("balance report", payload, err)
	}

	result := ZeroBalance()
	reports := children(child(doc.root, "BkToCstmrAcctRpt"), "Rpt")
	if len(reports) == 0 {
		return result, c.degrade("balance report", payload,
			fmt.Errorf("no account report in document"))
	}

	rpt := reports[0]
	if accountIBAN != "" {
		for _, r := range reports {
			if textAt(r, "Acct", "Id", "IBAN") == accountIBAN {
				rpt = r
				break
			}
		}
	}

	if ccy := textAt(rpt, "Acct", "Ccy"); ccy != "" {
		result.Currency = ccy
	}
	for _, bal := range children(rpt, "Bal") {
		amount, ok := signedAmount(bal)
		if !ok {
			continue
		}
		switch textAt(bal, "Tp", "CdOrPrtry", "Cd") {
		case balClosingBooked:
			result.Booked = amount
		case balClosingAvailable:
			result.Available = amount
		}
	}

	return result, OK
}

// DecodeStatement reads a camt.053 account statement into normalized
// transactions. The source presents entries oldest first, seeded by an
// opening balance; the returned slice is most recent first, each entry
// carrying the running balance after it was applied.
func (c *Codec) DecodeStatement(payload []byte) ([]Transaction, Outcome) {
	doc, err := parseDocument(payload)
	if err != nil {
		return []Transaction{}, c.degrade("statement", payload, err)
	}

	stmt := descend(doc.root, "BkToCstmrStmt", "Stmt")
	if stmt == nil {
		return []Transaction{}, c.degrade("statement", payload,
			fmt.Errorf("no statement in document"))
	}

	running := decimal.Zero
	currency := textAt(stmt, "Acct", "Ccy")
	for _, bal := range children(stmt, "Bal") {
		if textAt(bal, "Tp", "CdOrPrtry", "Cd") != balOpeningBooked {
			continue
		}
		if amount, ok := signedAmount(bal); ok {
			running = amount
		}
		if currency == "" {
			if amt := descend(bal, "Amt"); amt != nil {
				currency = amt.SelectAttrValue("Ccy", "")
			}
		}
		break
	}

	entries := children(stmt, "Ntry")
	transactions := make([]Transaction, 0, len(entries))
	for _, ntry := range entries {
		// Entries carry Amt/CdtDbtInd in the same shape as balances.
		amount, ok := signedAmount(ntry)
		if !ok {
			continue
		}
		running = running.Add(amount)

		ccy := currency
		if amt := descend(ntry, "Amt"); amt != nil {
			if a := amt.SelectAttrValue("Ccy", ""); a != "" {
				ccy = a
			}
		}

		transactions = append(transactions, Transaction{
			BookingDate:    dateAt(ntry, "BookgDt"),
			ValueDate:      dateAt(ntry, "ValDt"),
			Amount:         amount,
			Currency:       ccy,
			Type:           classify(ntry),
			Status:         textAt(ntry, "Sts"),
			Reference:      entryReference(ntry),
			Description:    entryDescription(ntry),
			RunningBalance: running,
			Counterparty:   counterpartyOf(ntry),
		})
	}

	// Most recent first.
	for i, j := 0, len(transactions)-1; i < j; i, j = i+1, j-1 {
		transactions[i], transactions[j] = transactions[j], transactions[i]
	}

	return transactions, OK
}

// DecodePaymentStatus reads a pain.002 payment status report. When the
// report carries no original instruction id, fallbackID names the payment
// in the result.
func (c *Codec) DecodePaymentStatus(payload []byte, fallbackID string) (StatusReport, Outcome) {
	doc, err := parseDocument(payload)
	if err != nil {
		return StatusReport{PaymentID: fallbackID}, c.degrade("payment status", payload, err)
	}

	rpt := child(doc.root, "CstmrPmtStsRpt")
	if rpt == nil {
		return StatusReport{PaymentID: fallbackID}, c.degrade("payment status", payload,
			fmt.Errorf("no payment status report in document"))
	}

	result := StatusReport{
		PaymentID: fallbackID,
		Status:    textAt(rpt, "OrgnlGrpInfAndSts", "GrpSts"),
	}

	tx := descend(rpt, "OrgnlPmtInfAndSts", "TxInfAndSts")
	if tx != nil {
		if id := textAt(tx, "OrgnlInstrId"); id != "" {
			result.PaymentID = id
		} else if id := textAt(tx, "OrgnlEndToEndId"); id != "" {
			result.PaymentID = id
		}
		if status := textAt(tx, "TxSts"); status != "" {
			result.Status = status
		}
		if result.Status == "RJCT" {
			result.Reason = textAt(tx, "StsRsnInf", "AddtlInf")
		}
	}

	return result, OK
}

func (c *Codec) degrade(kind string, payload []byte, err error) Outcome {
	c.logger.Error("failed to decode payload, degrading to zero value",
		zap.String("message", kind),
		zap.Error(err),
		zap.String("payload", excerpt(payload)))
	return degraded(err.Error())
}

// excerpt returns the first kilobyte of a payload for log diagnosis.
func excerpt(payload []byte) string {
	const max = 1000
	if len(payload) <= max {
		return string(payload)
	}
	return string(payload[:max])
}

// signedAmount reads a balance element's amount, negated when the
// debit/credit indicator marks a debit.
func signedAmount(bal *etree.Element) (decimal.Decimal, bool) {
	amt := child(bal, "Amt")
	if amt == nil {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(trimmed(amt))
	if err != nil {
		return decimal.Zero, false
	}
	if textAt(bal, "CdtDbtInd") == IndicatorDebit {
		value = value.Neg()
	}
	return value, true
}

func classify(ntry *etree.Element) string {
	domn := descend(ntry, "BkTxCd", "Domn")
	if domn == nil {
		return ""
	}
	domain := textAt(domn, "Cd")
	family := textAt(domn, "Fmly", "Cd")
	sub := textAt(domn, "Fmly", "SubFmlyCd")

	dotted := domain + "." + family + "." + sub
	if named, ok := classificationOverrides[dotted]; ok {
		return named
	}
	return dotted
}

func entryReference(ntry *etree.Element) string {
	if ref := textAt(ntry, "NtryDtls", "TxDtls", "Refs", "EndToEndId"); ref != "" {
		return ref
	}
	return textAt(ntry, "NtryRef")
}

// entryDescription joins all unstructured remittance lines with any
// additional entry note.
func entryDescription(ntry *etree.Element) string {
	var parts []string
	if rmt := descend(ntry, "NtryDtls", "TxDtls", "RmtInf"); rmt != nil {
		for _, ustrd := range children(rmt, "Ustrd") {
			if s := trimmed(ustrd); s != "" {
				parts = append(parts, s)
			}
		}
	}
	if note := textAt(ntry, "AddtlNtryInf"); note != "" {
		parts = append(parts, note)
	}
	return strings.Join(parts, " ")
}

// counterpartyOf picks the other side of the entry: the creditor when
// money left the account, the debtor when money came in.
func counterpartyOf(ntry *etree.Element) *Counterparty {
	parties := descend(ntry, "NtryDtls", "TxDtls", "RltdPties")
	if parties == nil {
		return nil
	}

	side, acct := "Dbtr", "DbtrAcct"
	if textAt(ntry, "CdtDbtInd") == IndicatorDebit {
		side, acct = "Cdtr", "CdtrAcct"
	}

	cp := Counterparty{
		Name:    textAt(parties, side, "Nm"),
		Account: textAt(parties, acct, "Id", "IBAN"),
	}
	if cp.Name == "" && cp.Account == "" {
		return nil
	}
	return &cp
}

func dateAt(ntry *etree.Element, name string) time.Time {
	e := child(ntry, name)
	if e == nil {
		return time.Time{}
	}
	raw := textAt(e, "Dt")
	if raw == "" {
		raw = textAt(e, "DtTm")
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
