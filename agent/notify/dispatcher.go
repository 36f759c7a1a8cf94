// Package notify delivers completed business events (reservation confirmed,
// order checked out) to an outbound sink without blocking the conversation.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	metricsx "github.com/tanpawarit/restaurant-voice-agent/agent/metrics"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher hands each message to a sink on its own goroutine. Callers never
// wait on delivery; Wait exists so call teardown can let sends finish.
type Dispatcher struct {
	name    string
	sink    contractx.Notifier
	timeout time.Duration
	metrics *metricsx.Recorder
	wg      sync.WaitGroup
}

func NewDispatcher(name string, sink contractx.Notifier, timeout time.Duration, rec *metricsx.Recorder) *Dispatcher {
	if sink == nil {
		sink = Unconfigured{}
		name = "none"
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{name: name, sink: sink, timeout: timeout, metrics: rec}
}

// Send returns immediately.
func (d *Dispatcher) Send(ctx context.Context, message string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		delivered := d.sink.Notify(sendCtx, message)
		d.metrics.ObserveNotification(d.name, delivered)
		if !delivered {
			log.Warn().Str("sink", d.name).Msg("notification not delivered")
			return
		}
		log.Info().Str("sink", d.name).Msg("notification delivered")
	}()
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Unconfigured stands in when no sink is set up.
type Unconfigured struct{}

func (Unconfigured) Notify(_ context.Context, message string) bool {
	log.Warn().Str("message", message).Msg("notification sink is not configured, dropping message")
	return false
}
