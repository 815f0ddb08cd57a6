package service

import (
	"slices"
	"sync"

	"github.com/MKhiriev/go-remote-config/models"
)

// ConfigDescriptor is one entry of a poll diff.
type ConfigDescriptor struct {
	Path    string
	Product string
	ID      string
	Version int64
	File    []byte
}

type outcome struct {
	state models.ApplyState
	err   string
}

// TransactionResult collects the verdicts batch handlers report for one poll.
// It is shared by every filtered [Transaction] of that poll.
type TransactionResult struct {
	mu       sync.Mutex
	outcomes map[string]outcome
	handled  map[string]struct{}

	// late is set once the manager has folded the outcomes; verdicts
	// arriving afterwards go straight to the committed rows.
	late func(path string, o outcome)
}

func newTransactionResult() *TransactionResult {
	return &TransactionResult{
		outcomes: make(map[string]outcome),
		handled:  make(map[string]struct{}),
	}
}

func (r *TransactionResult) report(path string, o outcome) {
	r.mu.Lock()
	r.handled[path] = struct{}{}
	late := r.late
	if late == nil {
		r.outcomes[path] = o
	}
	r.mu.Unlock()

	if late != nil {
		late(path, o)
	}
}

func (r *TransactionResult) markHandled(path string) {
	r.mu.Lock()
	r.handled[path] = struct{}{}
	r.mu.Unlock()
}

func (r *TransactionResult) isHandled(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handled[path]
	return ok
}

// seal returns the outcomes collected so far and routes every later verdict
// to late.
func (r *TransactionResult) seal(late func(path string, o outcome)) map[string]outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.outcomes
	r.outcomes = nil
	r.late = late
	return out
}

// Transaction is the view of a poll diff handed to a [BatchHandler].
type Transaction struct {
	ToUnapply []ConfigDescriptor
	ToApply   []ConfigDescriptor
	ToModify  []ConfigDescriptor

	result *TransactionResult
}

// Ack marks path as applied. The path is not dispatched to its product
// handler.
func (t *Transaction) Ack(path string) {
	t.result.report(path, outcome{state: models.ApplyStateAcknowledged})
}

// Error marks path as failed with err. The path is not dispatched to its
// product handler.
func (t *Transaction) Error(path string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	t.result.report(path, outcome{state: models.ApplyStateError, err: msg})
}

// MarkHandled suppresses dispatch of path to its product handler without
// reporting an outcome.
func (t *Transaction) MarkHandled(path string) {
	t.result.markHandled(path)
}

// IsEmpty reports whether the view holds no descriptors.
func (t *Transaction) IsEmpty() bool {
	return len(t.ToUnapply) == 0 && len(t.ToApply) == 0 && len(t.ToModify) == 0
}

// filter returns a view restricted to products.
func (t *Transaction) filter(products []string) *Transaction {
	keep := func(list []ConfigDescriptor) []ConfigDescriptor {
		var out []ConfigDescriptor
		for _, d := range list {
			if slices.Contains(products, d.Product) {
				out = append(out, d)
			}
		}
		return out
	}

	return &Transaction{
		ToUnapply: keep(t.ToUnapply),
		ToApply:   keep(t.ToApply),
		ToModify:  keep(t.ToModify),
		result:    t.result,
	}
}
