// Copyright (c) 2025 go-lhvconnect authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package lhvconnect is a Go client for a bank's asynchronous messaging API.

Commands are submitted over mutual-TLS HTTPS, but their results arrive
later as messages in a polled mailbox: each submission is assigned a
correlation id, and the client waits for a mailbox message of the
expected type carrying that id, fetches its ISO 20022 XML payload,
deletes the message, and decodes the payload into normalized records.

# Package Structure

	github.com/kempu/go-lhvconnect/pkg/transport - mTLS HTTPS calls with bounded retry
	github.com/kempu/go-lhvconnect/pkg/mailbox   - mailbox polling and correlation
	github.com/kempu/go-lhvconnect/pkg/message   - ISO 20022 subset codec (camt/pain)
	github.com/kempu/go-lhvconnect/pkg/bank      - the four public operations

# Quick Start

	import (
	    "github.com/kempu/go-lhvconnect/pkg/bank"
	    "github.com/kempu/go-lhvconnect/pkg/transport"
	)

	tcfg := transport.DefaultConfig("https://connect.example-bank.com")
	tcfg.ClientID = "TREASURY1"
	tcfg.Certificates = []tls.Certificate{clientCert}
	tcfg.RootCAs = rootPool

	client := bank.NewClient(transport.NewClient(tcfg, logger), nil, logger)

	balance := client.GetBalance(ctx, "EE417700771000000000")
	transactions := client.GetTransactions(ctx, iban, from, to)

	status, err := client.InitiateTransfer(ctx, payment)
	status = client.ConfirmTransfer(ctx, status.PaymentID)

Every operation blocks while polling the mailbox, up to its configured
timeout. See examples/basic for a complete walkthrough.

# Message Subset

The client implements exactly the message shapes needed for these round
trips: camt.060 report requests, camt.052 balance reports, camt.053
account statements, pain.001 payment initiation and pain.002 status
reports. It is not a general ISO 20022 library.
*/
package lhvconnect
