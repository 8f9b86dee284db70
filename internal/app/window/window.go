// Package window implements the one-shot, time-boxed listening windows used
// to collect a deposit after the member asks for one.
package window

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/fardannozami/faccao-bot/internal/domain"
)

type State int

const (
	Awaiting State = iota
	Fulfilled
	TimedOut
	Cancelled
)

func (s State) String() string {
	switch s {
	case Awaiting:
		return "awaiting"
	case Fulfilled:
		return "fulfilled"
	case TimedOut:
		return "timed out"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

// Window waits for exactly one message from one member.
type Window struct {
	ID  string
	Key string

	collector *Collector
	timer     clock.Timer
	done      chan struct{}

	// guarded by collector.mu
	state State
	msg   domain.IncomingMessage
}

// Collector tracks at most one pending window per key.
type Collector struct {
	clock clock.Clock

	mu      sync.Mutex
	pending map[string]*Window
}

func NewCollector(clk clock.Clock) *Collector {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Collector{
		clock:   clk,
		pending: make(map[string]*Window),
	}
}

// Key identifies the member a window listens to.
func Key(chatID, userID string) string {
	return chatID + "|" + userID
}

// Open starts a window for key that expires after timeout.
func (c *Collector) Open(key string, timeout time.Duration) (*Window, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.pending[key]; ok {
		return nil, errors.AlreadyExistsf("deposit window for %s", key)
	}
	w := &Window{
		ID:        uuid.NewString(),
		Key:       key,
		collector: c,
		done:      make(chan struct{}),
		state:     Awaiting,
	}
	c.pending[key] = w
	w.timer = c.clock.AfterFunc(timeout, func() {
		c.resolve(w, TimedOut, domain.IncomingMessage{})
	})
	return w, nil
}

// Offer hands msg to the window pending for key. Only messages carrying an
// attachment qualify; anything else leaves the window open. It reports
// whether the message was consumed.
func (c *Collector) Offer(key string, msg domain.IncomingMessage) bool {
	if msg.Attachment == nil {
		return false
	}
	c.mu.Lock()
	w, ok := c.pending[key]
	c.mu.Unlock()
	if !ok {
		return false
	}
	return c.resolve(w, Fulfilled, msg)
}

// Pending reports whether a window is open for key.
func (c *Collector) Pending(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

// resolve moves w out of Awaiting. Only the first call wins.
func (c *Collector) resolve(w *Window, to State, msg domain.IncomingMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w.state != Awaiting {
		return false
	}
	w.state = to
	w.msg = msg
	if c.pending[w.Key] == w {
		delete(c.pending, w.Key)
	}
	if to != TimedOut {
		w.timer.Stop()
	}
	close(w.done)
	return true
}

// Wait blocks until the window resolves. An expired window returns an
// errors.Timeout error; a cancelled ctx cancels the window.
func (w *Window) Wait(ctx context.Context) (domain.IncomingMessage, error) {
	select {
	case <-w.done:
	case <-ctx.Done():
		w.collector.resolve(w, Cancelled, domain.IncomingMessage{})
	}

	w.collector.mu.Lock()
	defer w.collector.mu.Unlock()
	switch w.state {
	case Fulfilled:
		return w.msg, nil
	case TimedOut:
		return domain.IncomingMessage{}, errors.Timeoutf("deposit window %s", w.ID)
	default:
		return domain.IncomingMessage{}, errors.Annotatef(ctx.Err(), "deposit window %s", w.ID)
	}
}

// State returns the current state of the window.
func (w *Window) State() State {
	w.collector.mu.Lock()
	defer w.collector.mu.Unlock()
	return w.state
}
