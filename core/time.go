package core

import (
	"time"
)

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	delay := cfg.EventPollDelay
	if delay < 1 {
		delay = 1
	}
	interval := time.Duration(delay) * time.Millisecond

	return &Time{
		eventPollDelay: interval,
		eventTicker:    time.NewTicker(interval),
	}
}

// Time contains the time services and tickers
type Time struct {
	eventPollDelay time.Duration
	eventTicker    *time.Ticker
}

// EventPollDelay gets the effective pause between event polls
func (t *Time) EventPollDelay() time.Duration {
	return t.eventPollDelay
}

// EventTicker gets the initialized event ticker for the event loop
func (t *Time) EventTicker() *time.Ticker {
	return t.eventTicker
}

// Stop stops all tickers
func (t *Time) Stop() {
	t.eventTicker.Stop()
}
