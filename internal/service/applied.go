package service

import (
	"maps"
	"slices"
	"time"

	"github.com/MKhiriev/go-remote-config/models"
)

// appliedConfig is one row of the applied table. Rows are replaced, never
// reused, on modify, so a late outcome for an old version lands on a row that
// is no longer in the table.
type appliedConfig struct {
	path    string
	product string
	id      string
	version int64
	file    []byte
	length  int64
	hashes  map[string]string

	applyState models.ApplyState
	applyError string

	dispatchedAt time.Time
}

func newAppliedConfig(d ConfigDescriptor, meta models.TargetMeta, now time.Time) *appliedConfig {
	return &appliedConfig{
		path:         d.Path,
		product:      d.Product,
		id:           d.ID,
		version:      d.Version,
		file:         d.File,
		length:       meta.Length,
		hashes:       maps.Clone(meta.Hashes),
		applyState:   models.ApplyStateUnacknowledged,
		dispatchedAt: now,
	}
}

func (c *appliedConfig) descriptor() ConfigDescriptor {
	return ConfigDescriptor{
		Path:    c.path,
		Product: c.product,
		ID:      c.id,
		Version: c.version,
		File:    c.file,
	}
}

func (c *appliedConfig) setOutcome(o outcome) {
	c.applyState = o.state
	c.applyError = o.err
}

func (c *appliedConfig) configState() models.ConfigState {
	return models.ConfigState{
		ID:         c.id,
		Version:    c.version,
		Product:    c.product,
		ApplyState: c.applyState,
		ApplyError: c.applyError,
	}
}

func (c *appliedConfig) cachedTargetFile() models.CachedTargetFile {
	hashes := make([]models.TargetHash, 0, len(c.hashes))
	for _, algo := range slices.Sorted(maps.Keys(c.hashes)) {
		hashes = append(hashes, models.TargetHash{Algorithm: algo, Hash: c.hashes[algo]})
	}
	return models.CachedTargetFile{Path: c.path, Length: c.length, Hashes: hashes}
}

// appliedTable is keyed by config path.
type appliedTable map[string]*appliedConfig

func (t appliedTable) sortedPaths() []string {
	return slices.Sorted(maps.Keys(t))
}

// expire moves rows that stayed unacknowledged longer than timeout to the
// error state. A non-positive timeout disables expiry.
func (t appliedTable) expire(now time.Time, timeout time.Duration) []*appliedConfig {
	if timeout <= 0 {
		return nil
	}

	var expired []*appliedConfig
	for _, path := range t.sortedPaths() {
		row := t[path]
		if row.applyState == models.ApplyStateUnacknowledged && now.Sub(row.dispatchedAt) >= timeout {
			row.setOutcome(outcome{state: models.ApplyStateError, err: ErrApplyTimeout.Error()})
			expired = append(expired, row)
		}
	}
	return expired
}

func (t appliedTable) configStates() []models.ConfigState {
	states := make([]models.ConfigState, 0, len(t))
	for _, path := range t.sortedPaths() {
		states = append(states, t[path].configState())
	}
	return states
}

func (t appliedTable) cachedTargetFiles() []models.CachedTargetFile {
	files := make([]models.CachedTargetFile, 0, len(t))
	for _, path := range t.sortedPaths() {
		files = append(files, t[path].cachedTargetFile())
	}
	return files
}

func (t appliedTable) stateCounts() map[string]int {
	counts := make(map[string]int)
	for _, row := range t {
		counts[row.applyState.String()]++
	}
	return counts
}
