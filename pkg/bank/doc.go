// Copyright (c) 2025 go-lhvconnect authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package bank provides the four public operations of the client: balance
lookup, transaction history, payment initiation and payment confirmation.

Each operation is synchronous end to end from the caller's perspective:
it submits a command, then blocks polling the mailbox for the correlated
response, up to the operation's configured timeout. Callers needing
responsiveness should run each operation on its own goroutine; the
correlation-id filtering keeps concurrent operations of the same message
type from consuming each other's responses.

Failure policy differs by direction. Read operations (GetBalance,
GetTransactions) feed UI data and never fail: every failure mode is
logged and collapses to a zero balance or an empty transaction list.
Write operations (InitiateTransfer, ConfirmTransfer) surface explicit
statuses instead, distinguishing a genuine rejection (RJCT) from "the
bank has not answered yet" (PENDING) and from "something broke on our
side" (UNKNOWN).
*/
package bank
