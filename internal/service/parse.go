package service

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/MKhiriev/go-remote-config/models"
)

// pollDiff is the three-way diff of one poll against the applied table.
type pollDiff struct {
	tx *Transaction

	// rows holds the new rows of applied and modified paths.
	rows map[string]*appliedConfig
	// unapplied lists the paths to drop from the table.
	unapplied []string
}

func (d *pollDiff) empty() bool {
	return d.tx.IsEmpty()
}

// parseConfig reconciles the applied table with a populated response. Any
// error leaves the table untouched.
func (m *SyncManager) parseConfig(resp models.ConfigResponse) error {
	var targets models.Targets
	haveTargets := len(resp.Targets) > 0
	if haveTargets {
		if err := json.Unmarshal(resp.Targets, &targets); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTargets, err)
		}
	}

	files := make(map[string][]byte, len(resp.TargetFiles))
	for _, f := range resp.TargetFiles {
		files[f.Path] = f.Raw
	}

	m.mu.Lock()
	diff, err := m.diffLocked(resp.ClientConfigs, targets.Signed.Targets, files, m.now())
	batches := slices.Clone(m.batchHandlers)
	handlers := maps.Clone(m.handlers)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if !diff.empty() {
		m.logger.Debug().
			Int("unapply", len(diff.tx.ToUnapply)).
			Int("apply", len(diff.tx.ToApply)).
			Int("modify", len(diff.tx.ToModify)).
			Msg("dispatching config diff")

		m.runBatchHandlers(batches, diff.tx)
		m.foldOutcomes(diff)
		m.dispatch(handlers, diff)
	}

	m.mu.Lock()
	for _, path := range diff.unapplied {
		delete(m.applied, path)
	}
	for path, row := range diff.rows {
		m.applied[path] = row
	}
	m.cachedFiles = m.applied.cachedTargetFiles()
	if haveTargets {
		m.targetsVersion = targets.Signed.Version
		m.backendState = targets.Signed.Custom.OpaqueBackendState
	}
	m.publishAppliedLocked()
	m.mu.Unlock()

	return nil
}

func (m *SyncManager) diffLocked(
	clientConfigs []string,
	metas map[string]models.TargetMeta,
	files map[string][]byte,
	now time.Time,
) (*pollDiff, error) {
	diff := &pollDiff{
		tx:   &Transaction{result: newTransactionResult()},
		rows: make(map[string]*appliedConfig),
	}

	active := make(map[string]struct{}, len(clientConfigs))
	for _, path := range clientConfigs {
		active[path] = struct{}{}
	}

	for _, path := range m.applied.sortedPaths() {
		if _, ok := active[path]; !ok {
			diff.tx.ToUnapply = append(diff.tx.ToUnapply, m.applied[path].descriptor())
			diff.unapplied = append(diff.unapplied, path)
		}
	}

	for _, path := range clientConfigs {
		if _, seen := diff.rows[path]; seen {
			continue
		}

		meta, ok := metas[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTargetMeta, path)
		}

		existing := m.applied[path]
		if existing != nil && maps.Equal(existing.hashes, meta.Hashes) {
			continue
		}

		product, id, err := parsePath(path)
		if err != nil {
			return nil, err
		}

		raw, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTargetFile, path)
		}

		d := ConfigDescriptor{
			Path:    path,
			Product: product,
			ID:      id,
			Version: meta.Custom.V,
			File:    raw,
		}
		diff.rows[path] = newAppliedConfig(d, meta, now)

		if existing == nil {
			diff.tx.ToApply = append(diff.tx.ToApply, d)
		} else {
			diff.tx.ToModify = append(diff.tx.ToModify, d)
		}
	}

	return diff, nil
}
