// Package schedule computes academic week parity and current/next lessons
// from per-group weekly timetables, cached in memory with a TTL.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"nauassist/internal/models"
)

var (
	// ErrUnavailable means the group's timetable could not be fetched or
	// parsed and no last-known-good copy exists.
	ErrUnavailable = errors.New("schedule unavailable")
	// ErrGroupNotFound means the portal does not know the group at all.
	ErrGroupNotFound = errors.New("group not found")
)

// Source supplies a freshly parsed timetable for a group. The portal client
// is the production implementation.
type Source interface {
	FetchTimetable(ctx context.Context, group string) (*models.Timetable, error)
}

// Store is the optional persistent backing of the cache: one timetable per
// group identifier, refreshable independently. May be nil.
type Store interface {
	FindByGroup(ctx context.Context, group string) (*models.Timetable, error)
	Upsert(ctx context.Context, tt *models.Timetable) error
}

// A group's cache entry moves through empty → loading → ready → stale.
// Stale entries keep serving last-known-good data while one background
// refresh runs; only repeated refresh failures drop the entry back to empty.
type groupState struct {
	tt         *models.Timetable
	loadedAt   time.Time
	refreshing bool
	failures   int
}

const maxRefreshFailures = 3

// Engine owns the process-wide timetable cache and every parity computation.
// Reads never block each other; a refresh takes the write lock only to swap
// in a complete new timetable, so readers always observe the old or the new
// one, never a partial state.
type Engine struct {
	src           Source
	store         Store
	ttl           time.Duration
	semesterStart time.Time
	log           *zap.SugaredLogger
	now           func() time.Time

	mu     sync.RWMutex
	groups map[string]*groupState
}

// NewEngine wires the portal source and the optional persistent store.
func NewEngine(src Source, store Store, ttl time.Duration, semesterStart time.Time, log *zap.SugaredLogger) *Engine {
	return &Engine{
		src:           src,
		store:         store,
		ttl:           ttl,
		semesterStart: semesterStart,
		log:           log,
		now:           time.Now,
		groups:        make(map[string]*groupState),
	}
}

// ParityAt returns the academic week parity for the given instant.
func (e *Engine) ParityAt(ref time.Time) models.Parity {
	return WeekParity(e.semesterStart, ref)
}

// Timetable returns the group's timetable, loading it on first use and
// serving last-known-good data (marked stale) past the TTL while a
// background refresh runs.
func (e *Engine) Timetable(ctx context.Context, group string) (*models.Timetable, error) {
	e.mu.RLock()
	st, ok := e.groups[group]
	if ok && st.tt != nil {
		if e.now().Sub(st.loadedAt) <= e.ttl {
			tt := st.tt
			e.mu.RUnlock()
			return tt, nil
		}
		stale := *st.tt
		stale.Stale = true
		e.mu.RUnlock()
		e.refreshAsync(group)
		return &stale, nil
	}
	e.mu.RUnlock()

	return e.load(ctx, group)
}

// LessonsOn filters the group's entries to one day and parity, sorted by
// start time.
func (e *Engine) LessonsOn(ctx context.Context, group string, day time.Weekday, parity models.Parity) ([]models.TimetableEntry, error) {
	tt, err := e.Timetable(ctx, group)
	if err != nil {
		return nil, err
	}
	return lessonsOn(tt, day, parity), nil
}

// CurrentAndNext finds the lesson whose [start,end) interval contains the
// instant and the earliest lesson after it. When nothing remains today the
// next lesson comes from the first following day with lessons, with parity
// recomputed per scanned date. An instant exactly at a lesson's end counts
// as ended.
func (e *Engine) CurrentAndNext(ctx context.Context, group string, instant time.Time) (current, next *models.TimetableEntry, err error) {
	tt, err := e.Timetable(ctx, group)
	if err != nil {
		return nil, nil, err
	}

	parity := WeekParity(e.semesterStart, instant)
	minute := instant.Hour()*60 + instant.Minute()

	today := lessonsOn(tt, instant.Weekday(), parity)
	for i := range today {
		if today[i].Start <= minute && minute < today[i].End {
			current = &today[i]
		}
		if today[i].Start > minute && next == nil {
			next = &today[i]
		}
	}

	if next == nil {
		for d := 1; d <= 7; d++ {
			date := instant.AddDate(0, 0, d)
			lessons := lessonsOn(tt, date.Weekday(), WeekParity(e.semesterStart, date))
			if len(lessons) > 0 {
				next = &lessons[0]
				break
			}
		}
	}

	return current, next, nil
}

func lessonsOn(tt *models.Timetable, day time.Weekday, parity models.Parity) []models.TimetableEntry {
	var out []models.TimetableEntry
	for _, entry := range tt.Entries {
		if entry.Day == day && entry.Weeks.Matches(parity) {
			out = append(out, entry)
		}
	}
	// tt.Entries is sorted by (day, start) at parse time, so out is too.
	return out
}

// load performs the synchronous first fetch for a group. A fetch failure
// falls back to the persistent store before surfacing ErrUnavailable.
func (e *Engine) load(ctx context.Context, group string) (*models.Timetable, error) {
	tt, err := e.src.FetchTimetable(ctx, group)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			return nil, err
		}
		e.log.Warnw("timetable fetch failed", "group", group, "error", err)
		if e.store != nil {
			if saved, serr := e.store.FindByGroup(ctx, group); serr == nil && saved != nil {
				e.swapIn(group, saved, e.now().Add(-e.ttl))
				stale := *saved
				stale.Stale = true
				return &stale, nil
			}
		}
		return nil, fmt.Errorf("load timetable for %s: %w", group, ErrUnavailable)
	}

	e.swapIn(group, tt, e.now())
	e.persist(ctx, tt)
	return tt, nil
}

// refreshAsync starts one background refresh for a stale group; concurrent
// readers keep the old timetable until the swap.
func (e *Engine) refreshAsync(group string) {
	e.mu.Lock()
	st, ok := e.groups[group]
	if !ok || st.refreshing {
		e.mu.Unlock()
		return
	}
	st.refreshing = true
	e.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		tt, err := e.src.FetchTimetable(ctx, group)

		e.mu.Lock()
		st, ok := e.groups[group]
		if !ok {
			e.mu.Unlock()
			return
		}
		st.refreshing = false
		if err != nil {
			st.failures++
			failures := st.failures
			dropped := failures >= maxRefreshFailures
			if dropped {
				delete(e.groups, group)
			}
			e.mu.Unlock()
			e.log.Warnw("timetable refresh failed", "group", group, "failures", failures, "dropped", dropped, "error", err)
			return
		}
		st.tt = tt
		st.loadedAt = e.now()
		st.failures = 0
		e.mu.Unlock()

		e.persist(ctx, tt)
		e.log.Infow("timetable refreshed", "group", group, "entries", len(tt.Entries))
	}()
}

func (e *Engine) swapIn(group string, tt *models.Timetable, loadedAt time.Time) {
	e.mu.Lock()
	e.groups[group] = &groupState{tt: tt, loadedAt: loadedAt}
	e.mu.Unlock()
}

func (e *Engine) persist(ctx context.Context, tt *models.Timetable) {
	if e.store == nil {
		return
	}
	if err := e.store.Upsert(ctx, tt); err != nil {
		e.log.Warnw("timetable persist failed", "group", tt.Group, "error", err)
	}
}
