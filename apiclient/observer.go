package apiclient

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Event describes one completed call
type Event struct {
	Method     string
	Path       string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Observer receives every response and every error. It cannot change the outcome.
type Observer interface {
	Observe(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) Observe(ctx context.Context, event Event) {
	f(ctx, event)
}

// LogObserver writes events to the global zerolog logger
type LogObserver struct{}

func (LogObserver) Observe(_ context.Context, event Event) {
	if event.Err != nil {
		log.Error().
			Err(event.Err).
			Str("method", event.Method).
			Str("path", event.Path).
			Int("status", event.StatusCode).
			Dur("duration", event.Duration).
			Msg("API response error")
		return
	}
	log.Debug().
		Str("method", event.Method).
		Str("path", event.Path).
		Int("status", event.StatusCode).
		Dur("duration", event.Duration).
		Msg("API response")
}
