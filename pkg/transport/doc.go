// Copyright (c) 2025 go-lhvconnect authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport implements the authenticated HTTPS layer for the bank API.

Every call to the bank is made over mutual TLS: the client presents a
certificate issued by the bank and verifies the bank's endpoint against a
configured root. On top of TLS the client identifies itself with an
identity header on every request.

# TLS Configuration

TLS 1.3 is preferred with fallback to TLS 1.2:

	config := transport.DefaultConfig("https://connect.example-bank.com")
	// MinTLSVersion: TLS 1.2
	// MaxTLSVersion: TLS 1.3

For TLS 1.2, the following cipher suites are used:
  - TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256
  - TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384
  - TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256

# Usage

	client := transport.NewClient(&transport.Config{
	    BaseURL:      "https://connect.example-bank.com",
	    ClientID:     "TREASURY1",
	    Certificates: []tls.Certificate{clientCert},
	    RootCAs:      certPool,
	}, logger)

	res, err := client.Do(ctx, http.MethodPost, "/account-balance", body, transport.KindXML)
	requestID := res.RequestID()

Each call returns its own Result carrying status, headers and body, so
concurrent callers never observe each other's responses.

# Retry

Connection-level failures and 5xx statuses are retried up to two more
times with a linear backoff of 2*attempt seconds. 4xx responses are never
retried.
*/
package transport
