package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-remote-config/models"
)

// runBatchHandlers offers tx to every batch handler, each through a view
// filtered to its products. Handlers with an empty view are skipped.
func (m *SyncManager) runBatchHandlers(batches []batchRegistration, tx *Transaction) {
	for _, reg := range batches {
		view := tx.filter(reg.products)
		if view.IsEmpty() {
			continue
		}
		m.invokeBatch(reg, view)
	}
}

func (m *SyncManager) invokeBatch(reg batchRegistration, view *Transaction) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Uint64("batch_handler", uint64(reg.id)).
				Strs("products", reg.products).
				Err(fmt.Errorf("%w: %v", ErrHandlerPanic, r)).
				Msg("batch handler failed")
		}
	}()

	reg.handler(view)
}

// foldOutcomes copies batch verdicts onto the new rows and routes verdicts
// reported from now on straight to those rows.
func (m *SyncManager) foldOutcomes(diff *pollDiff) {
	setOutcome := func(path string, o outcome) {
		row, ok := diff.rows[path]
		if !ok {
			return
		}
		if o.state == models.ApplyStateError {
			m.metrics.IncHandlerError(row.product)
		}
		row.setOutcome(o)
	}

	outcomes := diff.tx.result.seal(func(path string, o outcome) {
		m.mu.Lock()
		defer m.mu.Unlock()
		setOutcome(path, o)
		m.publishAppliedLocked()
	})

	m.mu.Lock()
	defer m.mu.Unlock()
	for path, o := range outcomes {
		setOutcome(path, o)
	}
}

// dispatch hands every descriptor not claimed by a batch handler to the
// product handler of its product.
func (m *SyncManager) dispatch(handlers map[string]ProductHandler, diff *pollDiff) {
	lists := []struct {
		action Action
		items  []ConfigDescriptor
	}{
		{ActionUnapply, diff.tx.ToUnapply},
		{ActionApply, diff.tx.ToApply},
		{ActionModify, diff.tx.ToModify},
	}

	for _, list := range lists {
		for _, d := range list.items {
			if diff.tx.result.isHandled(d.Path) {
				continue
			}
			h, ok := handlers[d.Product]
			if !ok {
				continue
			}
			m.invoke(h, list.action, d, diff.rows[d.Path])
		}
	}
}

// invoke calls h and arranges for its outcome to land on row. row is nil for
// unapply, whose outcome is only logged.
func (m *SyncManager) invoke(h ProductHandler, action Action, d ConfigDescriptor, row *appliedConfig) {
	m.metrics.IncDispatch(d.Product, string(action))
	settle := m.settler(action, d, row)

	defer func() {
		if r := recover(); r != nil {
			settle(fmt.Errorf("%w: %v", ErrHandlerPanic, r))
		}
	}()

	switch h.kind {
	case HandlerSync:
		settle(h.sync(action, d.File, d.ID))
	case HandlerCallback:
		h.callback(action, d.File, d.ID, settle)
	case HandlerDeferred:
		ch := h.deferred(action, d.File, d.ID)
		if ch == nil {
			settle(nil)
			return
		}
		m.mu.Lock()
		closed := m.closed
		if !closed {
			m.waiters.Add(1)
		}
		m.mu.Unlock()
		if closed {
			return
		}
		go m.awaitDeferred(ch, d, settle)
	}
}

// awaitDeferred settles a deferred dispatch with the first value read from
// ch. It gives up when the manager is closed, and records ErrApplyTimeout
// once the acknowledgement limit has passed.
func (m *SyncManager) awaitDeferred(ch <-chan error, d ConfigDescriptor, settle func(error)) {
	defer m.waiters.Done()

	var timeout <-chan time.Time
	if m.ackTimeout > 0 {
		timer := time.NewTimer(m.ackTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-ch:
		settle(err)
	case <-timeout:
		settle(ErrApplyTimeout)
	case <-m.quit:
		m.logger.Debug().
			Str("product", d.Product).
			Str("path", d.Path).
			Msg("manager closed before deferred handler reported")
	}
}

// settler returns the outcome sink of one dispatch. Only the first call
// counts.
func (m *SyncManager) settler(action Action, d ConfigDescriptor, row *appliedConfig) func(error) {
	var once sync.Once

	return func(err error) {
		once.Do(func() {
			if err != nil {
				m.logger.Warn().
					Err(err).
					Str("product", d.Product).
					Str("path", d.Path).
					Str("action", string(action)).
					Msg("config handler failed")
				m.metrics.IncHandlerError(d.Product)
			}
			if row == nil {
				return
			}

			o := outcome{state: models.ApplyStateAcknowledged}
			if err != nil {
				o = outcome{state: models.ApplyStateError, err: err.Error()}
			}

			m.mu.Lock()
			row.setOutcome(o)
			m.publishAppliedLocked()
			m.mu.Unlock()
		})
	}
}
