// Package callback delivers webhook notifications after a step completes.
// Delivery is best effort: failures are logged and counted, never surfaced
// to the request that triggered them, and never retried here.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/impactility/vc-api/internal/platform/metrics"
	"github.com/impactility/vc-api/internal/workflow/exchange"
	"github.com/impactility/vc-api/internal/workflow/models"
)

// Payload is the public callback schema. It is built from a completed step
// with every field not listed here stripped, so callback receivers never see
// internal step state.
type Payload struct {
	StepID                 string                         `json:"stepId"`
	ExchangeID             string                         `json:"exchangeId"`
	VpRequest              *models.VpRequest              `json:"vpRequest,omitempty"`
	PresentationSubmission *models.PresentationSubmission `json:"presentationSubmission,omitempty"`
}

// PayloadFromStep projects a step onto the public callback schema.
func PayloadFromStep(exchangeID string, step *exchange.Step) Payload {
	return Payload{
		StepID:                 step.StepID,
		ExchangeID:             exchangeID,
		VpRequest:              step.PresentationRequest,
		PresentationSubmission: step.Submission,
	}
}

// Dispatcher posts callback payloads to configured webhook targets. Targets
// are attempted concurrently and independently; one failing target does not
// block the others.
type Dispatcher struct {
	client  *http.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient overrides the HTTP client used for deliveries.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		d.client = client
	}
}

// WithMetrics enables delivery counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher constructs a dispatcher with a default 10 second per-request
// timeout.
func NewDispatcher(logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DispatchAsync fires the payload at every target without blocking the
// caller. The triggering HTTP response must not wait on webhook delivery.
func (d *Dispatcher) DispatchAsync(targets []models.CallbackConfiguration, payload Payload) {
	if len(targets) == 0 {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.Dispatch(context.Background(), targets, payload)
	}()
}

// Dispatch posts the payload to every target and waits for all deliveries.
// Each target is attempted on its own goroutine; errors are logged per
// target and never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []models.CallbackConfiguration, payload Payload) {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("failed to marshal callback payload",
			"exchange_id", payload.ExchangeID,
			"step_id", payload.StepID,
			"error", err,
		)
		return
	}

	var g errgroup.Group
	for _, target := range targets {
		url := target.URL
		g.Go(func() error {
			if err := d.post(ctx, url, body); err != nil {
				if d.metrics != nil {
					d.metrics.CallbackFailures.Inc()
				}
				d.logger.Error("callback delivery failed",
					"url", url,
					"exchange_id", payload.ExchangeID,
					"step_id", payload.StepID,
					"error", err,
				)
				return nil
			}
			if d.metrics != nil {
				d.metrics.CallbackDeliveries.Inc()
			}
			d.logger.Info("callback submitted",
				"url", url,
				"exchange_id", payload.ExchangeID,
				"step_id", payload.StepID,
			)
			return nil
		})
	}
	_ = g.Wait() // all goroutines return nil; failures were logged above
}

func (d *Dispatcher) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until all in-flight async dispatches finish. Used on shutdown
// and in tests.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
