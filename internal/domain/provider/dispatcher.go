package provider

import (
	"context"

	"nutrisense-server-go/internal/platform/errors"
)

// Dispatcher walks an ordered provider chain. When a provider fails in a way
// the next one might survive (rate limit, exhausted quota, outage) it moves
// on silently; the caller only sees the last provider's classified error.
// The dispatcher itself never retries a provider.
type Dispatcher struct {
	providers []Provider
	logger    tagLogger
}

type tagLogger interface {
	WarnTag(tag, msg string, args ...interface{})
	InfoTag(tag, msg string, args ...interface{})
}

func NewDispatcher(providers []Provider, logger tagLogger) *Dispatcher {
	return &Dispatcher{providers: providers, logger: logger}
}

// Names returns the configured chain in dispatch order.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.providers))
	for _, p := range d.providers {
		names = append(names, p.Name())
	}
	return names
}

func (d *Dispatcher) Chat(ctx context.Context, req Request) (string, error) {
	return d.dispatch(ctx, "dispatcher.chat", func(ctx context.Context, p Provider) (string, error) {
		return p.Chat(ctx, req)
	})
}

func (d *Dispatcher) Transcribe(ctx context.Context, req TranscriptionRequest) (string, error) {
	return d.dispatch(ctx, "dispatcher.transcribe", func(ctx context.Context, p Provider) (string, error) {
		return p.Transcribe(ctx, req)
	})
}

func (d *Dispatcher) dispatch(ctx context.Context, op string, call func(context.Context, Provider) (string, error)) (string, error) {
	if len(d.providers) == 0 {
		return "", errors.New(errors.KindConfig, op, "no upstream providers configured")
	}

	var lastErr error
	for i, p := range d.providers {
		result, err := call(ctx, p)
		if err == nil {
			if i > 0 {
				d.logger.InfoTag("LLM", "fallback provider %s succeeded", p.Name())
			}
			return result, nil
		}

		lastErr = err
		if i < len(d.providers)-1 && failover(err) {
			d.logger.WarnTag("LLM", "provider %s failed, trying next: %v", p.Name(), err)
			continue
		}
		break
	}
	return "", lastErr
}

// failover reports whether the next provider in the chain could plausibly
// serve the request. Validation, parse and config failures would fail
// everywhere, so they end the chain immediately.
func failover(err error) bool {
	return errors.IsKind(err, errors.KindRateLimit) ||
		errors.IsKind(err, errors.KindQuota) ||
		errors.IsKind(err, errors.KindProvider)
}
