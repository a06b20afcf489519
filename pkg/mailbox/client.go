package mailbox

import (
	"context"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/kempu/go-lhvconnect/pkg/transport"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Message is a pending mailbox entry as returned by the listing endpoint.
type Message struct {
	ID           string `json:"messageResponseId"`
	ResponseType string `json:"messageResponseType"`
	// RequestID is the correlation id of the command this message answers.
	// Empty when the bank produced the message without a correlated request.
	RequestID string `json:"messageRequestId,omitempty"`
	CreatedAt string `json:"messageCreatedTime"`
}

type countEnvelope struct {
	Count int `json:"count"`
}

type listEnvelope struct {
	Messages []Message `json:"messages"`
}

// Client wraps the mailbox endpoints of the bank API.
type Client struct {
	transport *transport.Client
}

// NewClient creates a mailbox client on top of the given transport.
func NewClient(t *transport.Client) *Client {
	return &Client{transport: t}
}

// Count returns the number of messages pending in the mailbox.
func (c *Client) Count(ctx context.Context) (int, error) {
	res, err := c.transport.Do(ctx, http.MethodGet, "/messages/count", nil, transport.KindJSON)
	if err != nil {
		return 0, err
	}
	var env countEnvelope
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return 0, fmt.Errorf("decode message count: %w", err)
	}
	return env.Count, nil
}

// List returns up to limit pending messages in mailbox order.
func (c *Client) List(ctx context.Context, limit int) ([]Message, error) {
	path := fmt.Sprintf("/messages?limit=%d", limit)
	res, err := c.transport.Do(ctx, http.MethodGet, path, nil, transport.KindJSON)
	if err != nil {
		return nil, err
	}
	var env listEnvelope
	if err := json.Unmarshal(res.Body, &env); err != nil {
		return nil, fmt.Errorf("decode message listing: %w", err)
	}
	return env.Messages, nil
}

// Fetch retrieves the full payload of a message. The payload is the raw
// XML document the bank produced for the original command.
func (c *Client) Fetch(ctx context.Context, id string) ([]byte, error) {
	res, err := c.transport.Do(ctx, http.MethodGet, "/messages/"+id, nil, transport.KindXML)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// Delete removes a consumed message from the mailbox. Deleting a message
// that is already gone (remote 404) succeeds.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.transport.Do(ctx, http.MethodDelete, "/messages/"+id, nil, transport.KindJSON)
	return err
}
