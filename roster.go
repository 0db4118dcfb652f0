package advisor

import (
	"context"
	"errors"
	"io/fs"
	"sync"

	"go.uber.org/zap"
)

// RosterSource loads the full roster from some backing store.
// Implementations return an error wrapping fs.ErrNotExist when the
// backing store is absent.
type RosterSource interface {
	Load(ctx context.Context) (*Roster, error)
}

// Roster is a read-only, in-memory set of student records.
type Roster struct {
	records []StudentRecord
	skipped int
}

// NewRoster creates a Roster. skipped counts source rows dropped because
// their identifier could not be parsed.
func NewRoster(records []StudentRecord, skipped int) *Roster {
	return &Roster{records: records, skipped: skipped}
}

// Len returns the number of records. A nil Roster is empty.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Skipped returns how many source rows were dropped at load time.
func (r *Roster) Skipped() int {
	if r == nil {
		return 0
	}
	return r.skipped
}

// Lookup returns the first record whose identifier equals id.
func (r *Roster) Lookup(id int64) (StudentRecord, bool) {
	if r == nil {
		return StudentRecord{}, false
	}
	for _, rec := range r.records {
		if rec.ID == id {
			return rec.Clone(), true
		}
	}
	return StudentRecord{}, false
}

// Duplicates returns identifiers that appear more than once, in order of
// their second occurrence.
func (r *Roster) Duplicates() []int64 {
	if r == nil {
		return nil
	}
	seen := make(map[int64]int, len(r.records))
	var dups []int64
	for _, rec := range r.records {
		seen[rec.ID]++
		if seen[rec.ID] == 2 {
			dups = append(dups, rec.ID)
		}
	}
	return dups
}

// RosterCache loads a roster lazily and memoizes the first successful load.
// A missing source yields an empty roster that is not memoized, so a file
// that appears later is picked up on the next call.
type RosterCache struct {
	source RosterSource
	logger *zap.Logger

	mu     sync.Mutex
	roster *Roster
}

// NewRosterCache creates a RosterCache over source. A nil logger disables logging.
func NewRosterCache(source RosterSource, logger *zap.Logger) *RosterCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterCache{source: source, logger: logger}
}

// Get returns the cached roster, loading it on first use.
// The returned error wraps ErrRosterUnavailable when the source is absent;
// the roster is empty but usable in that case.
func (c *RosterCache) Get(ctx context.Context) (*Roster, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roster != nil {
		return c.roster, nil
	}
	r, err := c.source.Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Warn("roster source not found, continuing with empty roster", zap.Error(err))
		return NewRoster(nil, 0), errors.Join(ErrRosterUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	if dups := r.Duplicates(); len(dups) > 0 {
		c.logger.Warn("roster contains duplicate identifiers, first match wins",
			zap.Int64s("ids", dups))
	}
	if r.Skipped() > 0 {
		c.logger.Warn("roster rows skipped with unparseable identifiers", zap.Int("rows", r.Skipped()))
	}
	c.logger.Info("roster loaded", zap.Int("records", r.Len()))
	c.roster = r
	return r, nil
}

// Invalidate drops the memoized roster so the next Get reloads it.
func (c *RosterCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster = nil
	c.logger.Debug("roster cache invalidated")
}

// Loaded reports whether a roster is currently memoized.
func (c *RosterCache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roster != nil
}
