// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

// Action tells a product handler what to do with a configuration.
type Action string

const (
	ActionApply   Action = "apply"
	ActionModify  Action = "modify"
	ActionUnapply Action = "unapply"
)

// HandlerKind selects how a [ProductHandler] reports its outcome.
type HandlerKind int

const (
	// HandlerSync acknowledges as soon as the function returns nil.
	HandlerSync HandlerKind = iota + 1
	// HandlerCallback acknowledges when the handler calls the ack function.
	HandlerCallback
	// HandlerDeferred acknowledges when the returned channel yields.
	HandlerDeferred
)

func (k HandlerKind) String() string {
	switch k {
	case HandlerSync:
		return "sync"
	case HandlerCallback:
		return "callback"
	case HandlerDeferred:
		return "deferred"
	default:
		return "unknown"
	}
}

type (
	// SyncFunc handles one configuration synchronously. A non-nil error marks
	// the configuration as failed.
	SyncFunc func(action Action, file []byte, id string) error

	// CallbackFunc handles one configuration and reports the outcome later by
	// calling ack exactly once. Calls after the first are ignored.
	CallbackFunc func(action Action, file []byte, id string, ack func(error))

	// DeferredFunc handles one configuration and returns a channel that
	// delivers the outcome. A nil value or a closed channel acknowledges; a
	// nil channel acknowledges immediately.
	DeferredFunc func(action Action, file []byte, id string) <-chan error
)

// ProductHandler is a single-item consumer registered for one product.
// Build it with [SyncHandler], [CallbackHandler] or [DeferredHandler].
type ProductHandler struct {
	kind     HandlerKind
	sync     SyncFunc
	callback CallbackFunc
	deferred DeferredFunc
}

func SyncHandler(fn SyncFunc) ProductHandler {
	return ProductHandler{kind: HandlerSync, sync: fn}
}

func CallbackHandler(fn CallbackFunc) ProductHandler {
	return ProductHandler{kind: HandlerCallback, callback: fn}
}

func DeferredHandler(fn DeferredFunc) ProductHandler {
	return ProductHandler{kind: HandlerDeferred, deferred: fn}
}

// Kind returns the declared outcome style of h.
func (h ProductHandler) Kind() HandlerKind {
	return h.kind
}

func (h ProductHandler) valid() bool {
	switch h.kind {
	case HandlerSync:
		return h.sync != nil
	case HandlerCallback:
		return h.callback != nil
	case HandlerDeferred:
		return h.deferred != nil
	default:
		return false
	}
}

// BatchHandler receives a view of one poll's diff filtered to the products it
// was registered for. It runs synchronously inside the poll, but may keep tx
// and report outcomes later.
type BatchHandler func(tx *Transaction)

// BatchHandlerID identifies a registered [BatchHandler] for removal.
type BatchHandlerID uint64
