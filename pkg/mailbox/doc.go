// Copyright (c) 2025 go-lhvconnect authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package mailbox implements the polled message mailbox of the bank API.

Commands submitted to the bank are answered asynchronously: the result
arrives later as a message in a shared mailbox that must be polled,
matched to the originating request, fetched and deleted. The bank exposes
no push channel, so polling is the only delivery mechanism.

# Correlation

Each submitted command is assigned a request id, returned in a response
header. A mailbox message produced for that command carries the same id,
which lets concurrent operations of the same message type share one
mailbox without cross-delivering each other's responses.

# Waiting for a message

	poller := mailbox.NewPoller(mailbox.NewClient(transport), logger)
	payload, found, err := poller.Wait(ctx, "ACCOUNT_BALANCE", requestID, mailbox.DefaultPolicy())

Wait returns found=false when the timeout elapses without a matching
message. That is not an error: it means no update is available yet, and
retrying is the caller's decision.

Consumption is at-least-once: the payload is fetched before the message is
deleted, and a failed delete never discards an already-fetched payload.
*/
package mailbox
