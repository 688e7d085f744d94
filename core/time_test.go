package core_test

import (
	"testing"
	"time"

	"github.com/devblok/hellovk/core"
	"github.com/stretchr/testify/assert"
)

func TestTimeEventPollDelay(t *testing.T) {
	tm := core.NewTime(core.TimeConfiguration{EventPollDelay: 16})
	defer tm.Stop()
	assert.Equal(t, 16*time.Millisecond, tm.EventPollDelay())

	zero := core.NewTime(core.TimeConfiguration{})
	defer zero.Stop()
	assert.Equal(t, time.Millisecond, zero.EventPollDelay())

	select {
	case <-zero.EventTicker().C:
	case <-time.After(time.Second):
		t.Fatal("event ticker did not fire")
	}
}
