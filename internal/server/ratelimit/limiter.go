// Package ratelimit makes per-address sliding-window admission decisions.
package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
)

const (
	minute = time.Minute
	hour   = time.Hour
	day    = 24 * time.Hour
)

// Window names a tracked interval.
type Window string

const (
	WindowNone   Window = ""
	WindowMinute Window = "minute"
	WindowHour   Window = "hour"
	WindowDay    Window = "day"
)

// Limits holds the maximum number of requests per window. Hour and day
// counts include the shorter windows.
type Limits struct {
	Minute int `json:"minute" yaml:"minute"`
	Hour   int `json:"hour" yaml:"hour"`
	Day    int `json:"day" yaml:"day"`
}

// DefaultLimits keeps hour ≈ 30×minute and day ≈ 12×hour.
func DefaultLimits() Limits {
	return Limits{Minute: 60, Hour: 1800, Day: 21600}
}

// Validate reports nonsensical limits.
func (l Limits) Validate() error {
	if l.Minute < 1 || l.Hour < 1 || l.Day < 1 {
		return fmt.Errorf("%w: rate limits must be positive, got %+v", common.ErrValidation, l)
	}
	if l.Hour < l.Minute || l.Day < l.Hour {
		return fmt.Errorf("%w: rate limits must grow with the window, got %+v", common.ErrValidation, l)
	}
	return nil
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed  bool
	Minute   int
	Hour     int
	Day      int
	Exceeded Window
}

// window keeps request times oldest-first, so eviction trims the head.
type window struct {
	mu    sync.Mutex
	times []time.Time
}

// Limiter is safe for concurrent use. The zero value is not usable; call New.
type Limiter struct {
	limits Limits
	now    func() time.Time

	// TODO: evict idle addresses (LRU on last request time) so the map stops
	// growing with every address ever seen.
	mu      sync.Mutex
	windows map[string]*window
}

func New(limits Limits) (*Limiter, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	return &Limiter{
		limits:  limits,
		now:     time.Now,
		windows: make(map[string]*window),
	}, nil
}

// Allow records a request from addr and decides whether to admit it.
// Rejected requests are recorded too, so a client hammering the server
// stays blocked.
func (l *Limiter) Allow(addr string) Decision {
	w := l.window(addr)

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	if n := len(w.times); n > 0 && now.Before(w.times[n-1]) {
		// clock stepped back; keep the sequence ordered
		now = w.times[n-1]
	}

	w.evict(now)
	w.times = append(w.times, now)
	// With Day+1 entries inside a day the request is denied whatever is
	// older, so a flood keeps only the newest Day+1.
	if keep := l.limits.Day + 1; len(w.times) > keep {
		w.times = append(w.times[:0], w.times[len(w.times)-keep:]...)
	}

	d := w.count(now)
	switch {
	case d.Minute > l.limits.Minute:
		d.Exceeded = WindowMinute
	case d.Hour > l.limits.Hour:
		d.Exceeded = WindowHour
	case d.Day > l.limits.Day:
		d.Exceeded = WindowDay
	default:
		d.Allowed = true
	}
	return d
}

// Addresses returns how many addresses are tracked.
func (l *Limiter) Addresses() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

func (l *Limiter) window(addr string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[addr]
	if !ok {
		w = &window{}
		l.windows[addr] = w
	}
	return w
}

func (w *window) evict(now time.Time) {
	i := 0
	for i < len(w.times) && now.Sub(w.times[i]) >= day {
		i++
	}
	if i > 0 {
		w.times = append(w.times[:0], w.times[i:]...)
	}
}

func (w *window) count(now time.Time) Decision {
	var d Decision
	for _, t := range w.times {
		switch age := now.Sub(t); {
		case age < minute:
			d.Minute++
		case age < hour:
			d.Hour++
		case age < day:
			d.Day++
		}
	}
	d.Hour += d.Minute
	d.Day += d.Hour
	return d
}
