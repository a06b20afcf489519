// Copyright (c) 2025 go-lhvconnect authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package message implements the ISO 20022 message subset spoken by the bank:
account report requests (camt.060), balance reports (camt.052), account
statements (camt.053) and payment initiation with its status reports
(pain.001 / pain.002).

This is not a general ISO 20022 library. It covers exactly the shapes
needed for balance, transaction-history and payment round trips, and it
normalizes them into plain records (Balance, Transaction, StatusReport)
instead of exposing the full document trees.

# Encoding

Outbound requests are built with encoding/xml from typed structs. Every
request carries a freshly generated message id and the current UTC
timestamp:

	doc, err := message.NewReportRequest("EE417700771000000000", message.BalanceReport)
	doc, err := message.NewReportRequest(iban, message.StatementReport,
	    message.WithPeriod(from, to))

# Decoding

Inbound payloads arrive from the mailbox with or without a default
namespace declaration, and occasionally malformed. The decode path is
built on an etree document walk that matches local element names, so both
namespace styles decode identically. A parse failure never propagates: the
decoder logs a truncated excerpt of the payload and returns the type's
zero value together with a degraded Outcome, letting the caller decide how
to surface it.
*/
package message
