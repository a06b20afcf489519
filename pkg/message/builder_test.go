package message

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReportRequest_BalanceVariant(t *testing.T) {
	doc, err := NewReportRequest("EE417700771000000000", BalanceReport)
	require.NoError(t, err)

	s := string(doc)
	assert.Contains(t, s, NsAcctRptgReq)
	assert.Contains(t, s, "<Prtry>PAYMENT_LIMITS</Prtry>")
	assert.Contains(t, s, "<ReqdMsgNmId>camt.052.001.02</ReqdMsgNmId>")
	assert.Contains(t, s, "<IBAN>EE417700771000000000</IBAN>")
	assert.Contains(t, s, "<MsgId>")
	assert.Contains(t, s, "<CreDtTm>")
}

func TestNewReportRequest_StatementVariant(t *testing.T) {
	from := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	doc, err := NewReportRequest("EE417700771000000000", StatementReport, WithPeriod(from, to))
	require.NoError(t, err)

	s := string(doc)
	assert.Contains(t, s, "<Prtry>DATE</Prtry>")
	assert.Contains(t, s, "<ReqdMsgNmId>camt.053.001.02</ReqdMsgNmId>")
	assert.Contains(t, s, "<FrDt>2025-05-01</FrDt>")
	assert.Contains(t, s, "<ToDt>2025-05-31</ToDt>")
}

func TestNewReportRequest_DefaultPeriodIsThirtyDays(t *testing.T) {
	doc, err := NewReportRequest("EE417700771000000000", StatementReport)
	require.NoError(t, err)

	s := string(doc)
	today := time.Now().UTC()
	assert.Contains(t, s, "<ToDt>"+today.Format("2006-01-02")+"</ToDt>")
	assert.Contains(t, s, "<FrDt>"+today.AddDate(0, 0, -30).Format("2006-01-02")+"</FrDt>")
}

func TestNewReportRequest_RequiresIBAN(t *testing.T) {
	_, err := NewReportRequest("", BalanceReport)
	assert.Error(t, err)
}

func TestNewReportRequest_FreshMessageIDs(t *testing.T) {
	first, err := NewReportRequest("EE417700771000000000", BalanceReport)
	require.NoError(t, err)
	second, err := NewReportRequest("EE417700771000000000", BalanceReport)
	require.NoError(t, err)
	assert.NotEqual(t, string(first), string(second))
}

func validPayment() Payment {
	return Payment{
		DebtorName:   "Maja OU",
		DebtorIBAN:   "EE417700771000000001",
		CreditorName: "Tarne AS",
		CreditorIBAN: "EE417700771000000002",
		Amount:       decimal.RequireFromString("12.50"),
		Description:  "Invoice 1001",
	}
}

func TestPayment_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Payment)
		wantErr string
	}{
		{"valid", func(p *Payment) {}, ""},
		{"zero amount", func(p *Payment) { p.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(p *Payment) { p.Amount = decimal.RequireFromString("-1") }, "amount"},
		{"missing creditor IBAN", func(p *Payment) { p.CreditorIBAN = "" }, "creditor IBAN"},
		{"missing debtor IBAN", func(p *Payment) { p.DebtorIBAN = "" }, "debtor IBAN"},
		{"missing creditor name", func(p *Payment) { p.CreditorName = "" }, "creditor name"},
		{"reference and description", func(p *Payment) { p.Reference = "RF18539007547034" }, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPayment()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewPaymentRequest(t *testing.T) {
	doc, endToEndID, err := NewPaymentRequest(validPayment())
	require.NoError(t, err)
	require.NotEmpty(t, endToEndID)

	s := string(doc)
	assert.Contains(t, s, NsPaymentInit)
	assert.Contains(t, s, "<EndToEndId>"+endToEndID+"</EndToEndId>")
	assert.Contains(t, s, `<InstdAmt Ccy="EUR">12.50</InstdAmt>`)
	assert.Contains(t, s, "<NbOfTxs>1</NbOfTxs>")
	assert.Contains(t, s, "<PmtMtd>TRF</PmtMtd>")
	assert.Contains(t, s, "<Ustrd>Invoice 1001</Ustrd>")
	assert.NotContains(t, s, "<CdtrAgt>")
}

func TestNewPaymentRequest_StructuredReference(t *testing.T) {
	p := validPayment()
	p.Description = ""
	p.Reference = "RF18539007547034"

	doc, _, err := NewPaymentRequest(p)
	require.NoError(t, err)

	s := string(doc)
	assert.Contains(t, s, "<Ref>RF18539007547034</Ref>")
	assert.NotContains(t, s, "<Ustrd>")
}

func TestNewPaymentRequest_CreditorAgentAndAddress(t *testing.T) {
	p := validPayment()
	p.CreditorBIC = "LHVBEE22"
	p.CreditorAddress = []string{"Tartu mnt 2", "  ", "10145 Tallinn"}

	doc, _, err := NewPaymentRequest(p)
	require.NoError(t, err)

	s := string(doc)
	assert.Contains(t, s, "<BIC>LHVBEE22</BIC>")
	assert.Contains(t, s, "<AdrLine>Tartu mnt 2</AdrLine>")
	assert.Contains(t, s, "<AdrLine>10145 Tallinn</AdrLine>")
	assert.Equal(t, 2, strings.Count(s, "<AdrLine>"))
}

func TestNewPaymentRequest_KeepsCallerEndToEndID(t *testing.T) {
	p := validPayment()
	p.EndToEndID = "caller-id-1"

	_, endToEndID, err := NewPaymentRequest(p)
	require.NoError(t, err)
	assert.Equal(t, "caller-id-1", endToEndID)
}

func TestNewPaymentRequest_ValidationFailsFirst(t *testing.T) {
	p := validPayment()
	p.Amount = decimal.Zero

	doc, endToEndID, err := NewPaymentRequest(p)
	assert.Error(t, err)
	assert.Nil(t, doc)
	assert.Empty(t, endToEndID)
}
