package mailbox

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// listLimit is the maximum number of pending messages examined per poll.
const listLimit = 50

// Policy controls how long and how often the poller checks the mailbox.
type Policy struct {
	// MaxWait is the overall deadline for a single wait.
	MaxWait time.Duration
	// Interval is the pause between polls.
	Interval time.Duration
	// Jitter, when non-zero, adds a random duration in [0, Jitter) to each
	// pause to spread out concurrent pollers.
	Jitter time.Duration
}

// DefaultPolicy returns the standard mailbox policy: 30 seconds overall,
// polling once per second.
func DefaultPolicy() Policy {
	return Policy{MaxWait: 30 * time.Second, Interval: time.Second}
}

// WithMaxWait returns a copy of the policy with the overall deadline
// replaced. Statement retrievals use a longer deadline, payment
// acknowledgements a much shorter one.
func (p Policy) WithMaxWait(d time.Duration) Policy {
	p.MaxWait = d
	return p
}

// Poller waits for correlated messages to arrive in the mailbox.
type Poller struct {
	client *Client
	logger *zap.Logger

	// Clock hooks, replaced in tests to run on simulated time.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewPoller creates a poller. A nil logger disables logging.
func NewPoller(client *Client, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		client: client,
		logger: logger,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Wait polls the mailbox until a message matching expectedType and
// correlationID arrives or the policy deadline elapses.
//
// Either filter may be empty: an empty expectedType matches any type and
// an empty correlationID matches any message, including uncorrelated ones.
// When a correlationID is given, messages without a request id are
// excluded.
//
// The matching message is fetched and then deleted. A delete failure is
// logged and ignored: the payload was already retrieved and the wait
// succeeded. When the deadline elapses without a match, Wait returns
// found=false and no error.
func (p *Poller) Wait(ctx context.Context, expectedType, correlationID string, policy Policy) (payload []byte, found bool, err error) {
	start := p.now()
	deadline := start.Add(policy.MaxWait)

	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		payload, found, err := p.poll(ctx, expectedType, correlationID)
		if err != nil {
			return nil, false, err
		}
		if found {
			p.logger.Info("mailbox message consumed",
				zap.String("type", expectedType),
				zap.String("correlation_id", correlationID),
				zap.Duration("elapsed", p.now().Sub(start)))
			return payload, true, nil
		}

		if !p.now().Before(deadline) {
			p.logger.Debug("mailbox wait timed out",
				zap.String("type", expectedType),
				zap.String("correlation_id", correlationID),
				zap.Duration("elapsed", p.now().Sub(start)))
			return nil, false, nil
		}

		pause := policy.Interval
		if policy.Jitter > 0 {
			pause += time.Duration(rand.Int63n(int64(policy.Jitter)))
		}
		p.sleep(pause)
	}
}

// poll performs a single count/list/filter/fetch/delete pass.
func (p *Poller) poll(ctx context.Context, expectedType, correlationID string) ([]byte, bool, error) {
	count, err := p.client.Count(ctx)
	if err != nil {
		return nil, false, err
	}
	if count == 0 {
		return nil, false, nil
	}

	messages, err := p.client.List(ctx, listLimit)
	if err != nil {
		return nil, false, err
	}

	msg, ok := match(messages, expectedType, correlationID)
	if !ok {
		p.logger.Debug("no matching message among pending",
			zap.Int("pending", len(messages)),
			zap.String("type", expectedType),
			zap.String("correlation_id", correlationID))
		return nil, false, nil
	}

	payload, err := p.client.Fetch(ctx, msg.ID)
	if err != nil {
		return nil, false, err
	}

	if err := p.client.Delete(ctx, msg.ID); err != nil {
		// The payload is already in hand; losing the delete only means
		// the message may be seen again.
		p.logger.Warn("failed to delete consumed message",
			zap.String("message_id", msg.ID),
			zap.Error(err))
	}

	return payload, true, nil
}

// match returns the first message in mailbox order satisfying both filters.
func match(messages []Message, expectedType, correlationID string) (Message, bool) {
	for _, m := range messages {
		if expectedType != "" && m.ResponseType != expectedType {
			continue
		}
		if correlationID != "" && m.RequestID != correlationID {
			continue
		}
		return m, true
	}
	return Message{}, false
}
