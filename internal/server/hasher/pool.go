// Package hasher bounds memory-hard password hashing.
//
// A Pool owns a fixed number of slots. Every slot has its own lock and its own
// worker goroutine pinned to an OS thread, so Argon2id never runs on request
// goroutines and at most len(slots) digests are computed at any instant,
// system-wide. The slot count is therefore both a memory bound
// (slots × MemoryKiB) and an admission limit.
//
// golang.org/x/crypto/argon2 allocates its own block memory per call, so the
// "scratch buffer" of a slot is the worker's Argon2 working set rather than a
// slice we hand in. Nothing is zeroed between operations: residual block
// memory (never the digest itself) may survive until the GC reuses it. This
// is accepted.
package hasher

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"golang.org/x/crypto/argon2"
)

const (
	keyLen  = models.DigestSize
	threads = 1
)

var (
	// ErrUnavailable means no slot became free in time. It is never retried
	// by the pool.
	ErrUnavailable = fmt.Errorf("hasher: no free slot: %w", common.ErrResourceExhausted)
	// ErrClosed is returned by Hash after Close.
	ErrClosed = errors.New("hasher: pool closed")
)

// Params configures a Pool. Changing MemoryKiB or Iterations changes every
// digest and locks existing users out.
type Params struct {
	Slots      int
	MemoryKiB  uint32
	Iterations uint32
	// AcquireTimeout caps how long Hash waits for a slot. Zero fails fast.
	AcquireTimeout time.Duration
}

type deriveFunc func(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte

type result struct {
	digest []byte
	err    error
}

type job struct {
	password []byte
	salt     []byte
	done     chan result
}

type slot struct {
	id   int
	mu   sync.Mutex
	jobs chan job
}

// Pool is safe for concurrent use.
type Pool struct {
	params Params
	slots  []*slot
	freed  chan struct{}
	derive deriveFunc
	logger logging.Logger

	inFlight atomic.Int32

	closeMu sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
}

// New validates p and starts one worker per slot.
func New(p Params, logger logging.Logger) (*Pool, error) {
	if p.Slots < 1 {
		return nil, fmt.Errorf("%w: hasher slots must be >= 1, got %d", common.ErrValidation, p.Slots)
	}
	if p.Iterations < 1 {
		return nil, fmt.Errorf("%w: hasher iterations must be >= 1, got %d", common.ErrValidation, p.Iterations)
	}
	if p.MemoryKiB < 8*threads {
		return nil, fmt.Errorf("%w: hasher memory must be >= %d KiB, got %d", common.ErrValidation, 8*threads, p.MemoryKiB)
	}
	if p.AcquireTimeout < 0 {
		return nil, fmt.Errorf("%w: negative acquire timeout", common.ErrValidation)
	}

	pool := &Pool{
		params: p,
		slots:  make([]*slot, p.Slots),
		freed:  make(chan struct{}, p.Slots),
		derive: argon2.IDKey,
		logger: logger.With("module", "hasher"),
	}
	for i := range pool.slots {
		s := &slot{id: i, jobs: make(chan job, 1)}
		pool.slots[i] = s
		pool.wg.Add(1)
		go pool.work(s)
	}

	return pool, nil
}

// Slots returns the configured concurrency limit.
func (p *Pool) Slots() int { return len(p.slots) }

// InFlight returns the number of digests being computed right now.
func (p *Pool) InFlight() int { return int(p.inFlight.Load()) }

// Hash derives the 64-byte Argon2id digest of password under salt.
//
// If the caller's context ends while the digest is being computed, Hash
// returns ctx.Err() but the computation still finishes and frees its slot.
func (p *Pool) Hash(ctx context.Context, password, salt []byte) ([]byte, error) {
	if len(password) != models.PasswordHashSize {
		return nil, fmt.Errorf("%w: password hash must be %d bytes, got %d", common.ErrValidation, models.PasswordHashSize, len(password))
	}
	if len(salt) != models.SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", common.ErrValidation, models.SaltSize, len(salt))
	}

	p.closeMu.RLock()
	if p.closed {
		p.closeMu.RUnlock()
		return nil, ErrClosed
	}
	s, err := p.acquire(ctx)
	if err != nil {
		p.closeMu.RUnlock()
		if errors.Is(err, ErrUnavailable) {
			p.logger.Info(ctx, "no free hasher slot, expected when many users sign in at once", "slots", len(p.slots))
		}
		return nil, err
	}
	done := make(chan result, 1)
	s.jobs <- job{password: clone(password), salt: clone(salt), done: done}
	p.closeMu.RUnlock()

	select {
	case r := <-done:
		return r.digest, r.err
	case <-ctx.Done():
		p.logger.Debug(ctx, "caller left before digest was ready", "slot", s.id)
		return nil, ctx.Err()
	}
}

// Close stops the workers once queued work is done. It is idempotent.
func (p *Pool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	for _, s := range p.slots {
		close(s.jobs)
	}
	p.closeMu.Unlock()

	p.wg.Wait()
}

func (p *Pool) tryAcquire() *slot {
	for _, s := range p.slots {
		if s.mu.TryLock() {
			return s
		}
	}
	return nil
}

// acquire returns a locked slot. When none is free it sleeps on release
// notifications until AcquireTimeout elapses.
func (p *Pool) acquire(ctx context.Context) (*slot, error) {
	if s := p.tryAcquire(); s != nil {
		return s, nil
	}
	if p.params.AcquireTimeout == 0 {
		return nil, ErrUnavailable
	}

	timer := time.NewTimer(p.params.AcquireTimeout)
	defer timer.Stop()

	for {
		select {
		case <-p.freed:
			if s := p.tryAcquire(); s != nil {
				return s, nil
			}
		case <-timer.C:
			if s := p.tryAcquire(); s != nil {
				return s, nil
			}
			return nil, ErrUnavailable
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (p *Pool) release(s *slot) {
	s.mu.Unlock()
	select {
	case p.freed <- struct{}{}:
	default:
	}
}

func (p *Pool) work(s *slot) {
	defer p.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for j := range s.jobs {
		p.serve(s, j)
	}
}

func (p *Pool) serve(s *slot, j job) {
	defer p.release(s)
	j.done <- p.compute(j)
}

func (p *Pool) compute(j job) (res result) {
	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn(context.Background(), "unknown error while hashing", "panic", r)
			res = result{err: fmt.Errorf("hasher: argon2 failed: %v", r)}
		}
	}()

	return result{digest: p.derive(j.password, j.salt, p.params.Iterations, p.params.MemoryKiB, threads, keyLen)}
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
