// Package notifier delivers committed issuance events to configured webhook
// sinks. Delivery is best-effort and asynchronous: a slow or failing sink
// never blocks or fails the operation that produced the event, and never
// delays delivery to the other sinks.
package notifier

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/openmint/issuer-node/modules/issuance/internal/entity"
	"github.com/openmint/issuer-node/pkg/httpclient"
	"github.com/openmint/issuer-node/pkg/logger"
	"github.com/openmint/issuer-node/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

const eventBufferSize = 1024

// sink is one webhook destination with its own delivery queue, consumed by a
// dedicated worker goroutine.
type sink struct {
	url    string
	client *httpclient.Client
	ch     chan entity.Event
}

type Notifier struct {
	sinks []*sink

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
	running  atomic.Bool
}

func New(webhookURLs []string) (*Notifier, error) {
	sinks := make([]*sink, 0, len(webhookURLs))
	for _, webhookURL := range webhookURLs {
		client, err := httpclient.New(webhookURL)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid webhook url %q", webhookURL)
		}
		sinks = append(sinks, &sink{
			url:    webhookURL,
			client: client,
			ch:     make(chan entity.Event, eventBufferSize),
		})
	}
	return &Notifier{
		sinks: sinks,
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}, nil
}

// Publish enqueues events for delivery to every sink. It never blocks: when a
// sink's buffer is full the event is dropped for that sink with a warning,
// observers can recover it from the events endpoint.
func (n *Notifier) Publish(ctx context.Context, events ...entity.Event) {
	for _, event := range events {
		for _, s := range n.sinks {
			select {
			case s.ch <- event:
			default:
				logger.WarnContext(ctx, "Webhook buffer full, dropping event",
					slogx.String("webhook_url", s.url),
					slogx.Uint64("sequence", event.Sequence),
					slogx.String("type", event.Type.String()),
				)
			}
		}
	}
}

// Run consumes every sink's buffer until the context is canceled or Shutdown
// is called. Each sink drains independently.
func (n *Notifier) Run(ctx context.Context) error {
	n.running.Store(true)
	defer close(n.done)

	if len(n.sinks) == 0 {
		logger.InfoContext(ctx, "No webhook sinks configured, notifier is idle")
		select {
		case <-ctx.Done():
		case <-n.quit:
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range n.sinks {
		s := s
		g.Go(func() error {
			return n.runSink(ctx, s)
		})
	}
	return errors.WithStack(g.Wait())
}

func (n *Notifier) runSink(ctx context.Context, s *sink) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-n.quit:
			return nil
		case event := <-s.ch:
			n.deliver(ctx, s, event)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, s *sink, event entity.Event) {
	body, err := json.Marshal(deliveryFromEvent(event))
	if err != nil {
		logger.ErrorContext(ctx, "Failed to marshal webhook payload", slogx.Error(err))
		return
	}

	if err := n.post(ctx, s, body); err != nil {
		// one retry after a short pause, then give up
		time.Sleep(time.Second)
		if err := n.post(ctx, s, body); err != nil {
			logger.ErrorContext(ctx, "Failed to deliver webhook event",
				slogx.Error(err),
				slogx.String("webhook_url", s.url),
				slogx.Uint64("sequence", event.Sequence),
			)
		}
	}
}

func (n *Notifier) post(ctx context.Context, s *sink, body []byte) error {
	resp, err := s.client.Post(ctx, "", httpclient.RequestOptions{Body: body})
	if err != nil {
		return errors.Wrap(err, "failed to post webhook")
	}
	if resp.StatusCode() >= 400 {
		return errors.Errorf("webhook sink returned status %d", resp.StatusCode())
	}
	return nil
}

// Shutdown stops the Run loop and waits for the sink workers to finish their
// in-flight deliveries. It returns immediately when the loop was never
// started (api-only mode).
func (n *Notifier) Shutdown() {
	n.quitOnce.Do(func() {
		close(n.quit)
	})
	if n.running.Load() {
		<-n.done
	}
}

type delivery struct {
	Sequence  uint64              `json:"sequence"`
	Authority string              `json:"authority"`
	Type      string              `json:"type"`
	Operator  string              `json:"operator"`
	Payload   entity.EventPayload `json:"payload"`
	CreatedAt time.Time           `json:"createdAt"`
}

func deliveryFromEvent(event entity.Event) delivery {
	return delivery{
		Sequence:  event.Sequence,
		Authority: event.Authority.Hex(),
		Type:      event.Type.String(),
		Operator:  event.Operator.Hex(),
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt,
	}
}
