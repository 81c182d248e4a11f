package circuit

import (
	"errors"
	"sync"
	"time"

	"github.com/Payphone-Digital/bilemo/pkg/logger"
	"go.uber.org/zap"
)

// State of a breaker
type State int

const (
	StateClosed   State = iota // calls pass through
	StateOpen                  // calls fail fast
	StateHalfOpen              // trial calls decide whether to close again
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrOpen is returned instead of calling through an open breaker
var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	FailureThreshold int           // consecutive failures that open the breaker
	OpenTimeout      time.Duration // how long to stay open before trial calls
	SuccessThreshold int           // trial successes needed to close
}

// DefaultConfig suits an optional dependency such as the listing cache
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 3,
		OpenTimeout:      30 * time.Second,
		SuccessThreshold: 1,
	}
}

// Breaker stops calling a failing dependency for a while
type Breaker struct {
	mu        sync.Mutex
	name      string
	config    Config
	state     State
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
}

func NewBreaker(name string, config Config) *Breaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 1
	}
	if config.SuccessThreshold < 1 {
		config.SuccessThreshold = 1
	}
	return &Breaker{
		name:   name,
		config: config,
		state:  StateClosed,
		now:    time.Now,
	}
}

// Execute runs fn unless the breaker is open and records its outcome
func (b *Breaker) Execute(fn func() error) error {
	if err := b.Allow(); err != nil {
		return err
	}
	err := fn()
	b.Record(err)
	return err
}

// Allow reports ErrOpen while the breaker is open and its timeout has not elapsed
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}
	if b.now().Sub(b.openedAt) < b.config.OpenTimeout {
		return ErrOpen
	}
	b.transitionTo(StateHalfOpen)
	return nil
}

func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.successes = 0
		b.failures++
		if b.state == StateHalfOpen || b.failures >= b.config.FailureThreshold {
			b.openedAt = b.now()
			b.transitionTo(StateOpen)
		}
		return
	}

	b.failures = 0
	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transitionTo(StateClosed)
		}
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// must hold lock
func (b *Breaker) transitionTo(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.successes = 0
	if next == StateClosed {
		b.failures = 0
	}

	logger.GetLogger().Warn("Circuit breaker state changed",
		zap.String("name", b.name),
		zap.String("from", prev.String()),
		zap.String("to", next.String()),
	)
}
