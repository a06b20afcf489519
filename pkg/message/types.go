package message

import (
	"encoding/xml"
	"time"

	"github.com/shopspring/decimal"
)

// Namespace constants for the supported ISO 20022 message definitions.
const (
	NsAcctRptgReq  = "urn:iso:std:iso:20022:tech:xsd:camt.060.001.03"
	NsBalanceRpt   = "urn:iso:std:iso:20022:tech:xsd:camt.052.001.02"
	NsStatement    = "urn:iso:std:iso:20022:tech:xsd:camt.053.001.02"
	NsPaymentInit  = "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03"
	NsPaymentStsRp = "urn:iso:std:iso:20022:tech:xsd:pain.002.001.03"
)

// Balance type codes used in camt balance entries.
const (
	balClosingBooked    = "ITBD"
	balClosingAvailable = "ITAV"
	balOpeningBooked    = "OPBD"
)

// Debit/credit indicator values.
const (
	IndicatorDebit  = "DBIT"
	IndicatorCredit = "CRDT"
)

// Classified transaction types. Unrecognized bank transaction codes pass
// through as the raw dotted domain.family.subfamily triple.
const (
	TypeInternalTransfer = "INTERNAL_TRANSFER"
	TypeReceivedTransfer = "RECEIVED_TRANSFER"
	TypeStandingOrder    = "STANDING_ORDER"
	TypeCardPayment      = "CARD_PAYMENT"
)

// Balance is the normalized result of a balance report.
type Balance struct {
	Booked    decimal.Decimal
	Available decimal.Decimal
	Currency  string
}

// ZeroBalance is the safe default returned when a balance report cannot
// be read.
func ZeroBalance() Balance {
	return Balance{Currency: "EUR"}
}

// Counterparty identifies the other side of a transaction entry.
type Counterparty struct {
	Name    string
	Account string
}

// Transaction is a normalized statement entry.
type Transaction struct {
	BookingDate    time.Time
	ValueDate      time.Time
	Amount         decimal.Decimal
	Currency       string
	Type           string
	Status         string
	Reference      string
	Description    string
	RunningBalance decimal.Decimal
	Counterparty   *Counterparty
}

// StatusReport is the normalized result of a payment status report.
type StatusReport struct {
	PaymentID string
	Status    string
	Reason    string
}

// Outcome reports whether a decode produced a complete result or degraded
// to the type's zero value.
type Outcome struct {
	Degraded bool
	Reason   string
}

// OK is the outcome of a fully decoded payload.
var OK = Outcome{}

func degraded(reason string) Outcome {
	return Outcome{Degraded: true, Reason: reason}
}

// camt.060 account reporting request.

type reportingRequestDocument struct {
	XMLName xml.Name         `xml:"Document"`
	Xmlns   string           `xml:"xmlns,attr"`
	Request reportingRequest `xml:"AcctRptgReq"`
}

type reportingRequest struct {
	GrpHdr  groupHeader  `xml:"GrpHdr"`
	RptgReq reportingReq `xml:"RptgReq"`
}

type groupHeader struct {
	MsgID   string `xml:"MsgId"`
	CreDtTm string `xml:"CreDtTm"`
}

type reportingReq struct {
	ID          string        `xml:"Id"`
	ReqdMsgNmID string        `xml:"ReqdMsgNmId"`
	Acct        account       `xml:"Acct"`
	RptgPrd     *reportPeriod `xml:"RptgPrd,omitempty"`
	ReqdBalTp   balanceType   `xml:"ReqdBalTp"`
}

type account struct {
	ID accountID `xml:"Id"`
}

type accountID struct {
	IBAN string `xml:"IBAN"`
}

type reportPeriod struct {
	FrToDt fromToDate `xml:"FrToDt"`
	Tp     string     `xml:"Tp"`
}

type fromToDate struct {
	FrDt string `xml:"FrDt"`
	ToDt string `xml:"ToDt"`
}

type balanceType struct {
	CdOrPrtry codeOrProprietary `xml:"CdOrPrtry"`
}

type codeOrProprietary struct {
	Prtry string `xml:"Prtry"`
}

// pain.001 customer credit transfer initiation.

type paymentDocument struct {
	XMLName xml.Name      `xml:"Document"`
	Xmlns   string        `xml:"xmlns,attr"`
	Initn   transferInitn `xml:"CstmrCdtTrfInitn"`
}

type transferInitn struct {
	GrpHdr paymentGroupHeader `xml:"GrpHdr"`
	PmtInf paymentInfo        `xml:"PmtInf"`
}

type paymentGroupHeader struct {
	MsgID    string `xml:"MsgId"`
	CreDtTm  string `xml:"CreDtTm"`
	NbOfTxs  string `xml:"NbOfTxs"`
	CtrlSum  string `xml:"CtrlSum"`
	InitgPty party  `xml:"InitgPty"`
}

type party struct {
	Nm      string         `xml:"Nm,omitempty"`
	PstlAdr *postalAddress `xml:"PstlAdr,omitempty"`
}

type postalAddress struct {
	Ctry    string   `xml:"Ctry,omitempty"`
	AdrLine []string `xml:"AdrLine,omitempty"`
}

type paymentInfo struct {
	PmtInfID    string           `xml:"PmtInfId"`
	PmtMtd      string           `xml:"PmtMtd"`
	ReqdExctnDt string           `xml:"ReqdExctnDt"`
	Dbtr        party            `xml:"Dbtr"`
	DbtrAcct    account          `xml:"DbtrAcct"`
	CdtTrfTx    creditTransferTx `xml:"CdtTrfTxInf"`
}

type creditTransferTx struct {
	PmtID    paymentID      `xml:"PmtId"`
	Amt      paymentAmount  `xml:"Amt"`
	CdtrAgt  *agent         `xml:"CdtrAgt,omitempty"`
	Cdtr     party          `xml:"Cdtr"`
	CdtrAcct account        `xml:"CdtrAcct"`
	RmtInf   *remittanceInf `xml:"RmtInf,omitempty"`
}

type paymentID struct {
	InstrID    string `xml:"InstrId"`
	EndToEndID string `xml:"EndToEndId"`
}

type paymentAmount struct {
	InstdAmt instructedAmount `xml:"InstdAmt"`
}

type instructedAmount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

type agent struct {
	FinInstnID finInstitutionID `xml:"FinInstnId"`
}

type finInstitutionID struct {
	BIC string `xml:"BIC"`
}

type remittanceInf struct {
	Ustrd []string          `xml:"Ustrd,omitempty"`
	Strd  *structuredRmtInf `xml:"Strd,omitempty"`
}

type structuredRmtInf struct {
	CdtrRefInf creditorReference `xml:"CdtrRefInf"`
}

type creditorReference struct {
	Ref string `xml:"Ref"`
}
