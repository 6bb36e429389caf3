package uci

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrPoolClosed     = errors.New("uci pool closed")
	errPoolAtCapacity = errors.New("uci pool at capacity")
)

type PoolConfig struct {
	Command  Command
	Options  Options
	Capacity int
	Logger   *zap.Logger
}

// Pool keeps up to Capacity engine processes sharing one option set. A
// session is owned by a single caller between Acquire and Release.
type Pool struct {
	command  Command
	opt      Options
	capacity int
	logger   *zap.Logger

	mu     sync.Mutex
	total  int
	closed bool
	idle   chan *Session
}

func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Command.Path == "" {
		return nil, fmt.Errorf("binary path required")
	}
	if _, err := os.Stat(cfg.Command.Path); err != nil {
		return nil, fmt.Errorf("engine binary check: %w", err)
	}
	if err := validateOptions(cfg.Options); err != nil {
		return nil, err
	}

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pool{
		command:  cfg.Command,
		opt:      cfg.Options,
		capacity: capacity,
		logger:   logger,
		idle:     make(chan *Session, capacity),
	}, nil
}

func (p *Pool) Capacity() int { return p.capacity }

// Acquire returns an idle session, starts a new one while below capacity,
// or waits for a release.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	for {
		if p.isClosed() {
			return nil, ErrPoolClosed
		}
		select {
		case session := <-p.idle:
			if session == nil {
				continue
			}
			if err := session.EnsureReady(ctx); err != nil {
				p.discard(session)
				continue
			}
			return session, nil
		default:
		}

		session, err := p.create(ctx)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, errPoolAtCapacity) {
			return nil, err
		}

		select {
		case session := <-p.idle:
			if session == nil {
				continue
			}
			if err := session.EnsureReady(ctx); err != nil {
				p.discard(session)
				continue
			}
			return session, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release returns a session to the pool. A non-nil err discards it.
func (p *Pool) Release(session *Session, err error) {
	if session == nil {
		return
	}
	if err != nil || p.isClosed() {
		if err != nil {
			p.logger.Debug("uci_session_discarded", zap.Error(err))
		}
		p.discard(session)
		return
	}
	select {
	case p.idle <- session:
	default:
		p.discard(session)
	}
}

func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	var errs []error
	for {
		select {
		case session := <-p.idle:
			if session == nil {
				continue
			}
			if err := session.Close(); err != nil {
				var exitErr interface{ ExitCode() int }
				if !errors.As(err, &exitErr) {
					errs = append(errs, err)
				}
			}
			p.decrement()
		default:
			return errors.Join(errs...)
		}
	}
}

func (p *Pool) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Pool) create(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	if p.total >= p.capacity {
		p.mu.Unlock()
		return nil, errPoolAtCapacity
	}
	p.total++
	p.mu.Unlock()

	session, err := NewSession(ctx, p.command, p.opt, p.logger)
	if err != nil {
		p.decrement()
		return nil, err
	}
	return session, nil
}

func (p *Pool) discard(session *Session) {
	if session != nil {
		_ = session.Close()
	}
	p.decrement()
}

func (p *Pool) decrement() {
	p.mu.Lock()
	if p.total > 0 {
		p.total--
	}
	p.mu.Unlock()
}

func defaultCapacity() int {
	cpu := runtime.NumCPU()
	if cpu < 2 {
		return 2
	}
	if cpu > 4 {
		return 4
	}
	return cpu
}
