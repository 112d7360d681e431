package saga

import (
	"context"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/libp2p/go-libp2p/core/event"
	"github.com/libp2p/go-libp2p/p2p/host/eventbus"
	"go.uber.org/atomic"

	"github.com/jhuhnke/solana-walrus/saga/types"
)

// uploadHandler keeps track of the upload while it's executing
type uploadHandler struct {
	sagaCtx  context.Context
	uploadID cid.Cid
	bus      event.Bus
	emitter  event.Emitter

	// Execution cancellation state
	execCtx         context.Context
	execCancel      context.CancelFunc
	doneOnce        sync.Once
	done            chan struct{}
	cancelledByUser atomic.Bool

	activeSubsLk sync.RWMutex
	activeSubs   map[*updatesSubscription]struct{}
}

func newUploadHandler(sagaCtx context.Context, ctx context.Context, id cid.Cid) (*uploadHandler, error) {
	bus := eventbus.NewBus()
	emitter, err := bus.Emitter(&types.UploadState{}, eventbus.Stateful)
	if err != nil {
		return nil, fmt.Errorf("failed to create event emitter for upload %s: %w", id, err)
	}

	execCtx, cancel := context.WithCancel(ctx)
	return &uploadHandler{
		sagaCtx:  sagaCtx,
		uploadID: id,
		bus:      bus,
		emitter:  emitter,

		execCtx:    execCtx,
		execCancel: cancel,
		done:       make(chan struct{}),

		activeSubs: make(map[*updatesSubscription]struct{}),
	}, nil
}

// updatesSubscription wraps event.Subscription so that we can add an onClose
// callback
type updatesSubscription struct {
	event.Subscription
	onClose func(*updatesSubscription)
}

func (s *updatesSubscription) Close() error {
	s.onClose(s)
	return s.Subscription.Close()
}

// subscribeUpdates subscribes to upload state updates
func (h *uploadHandler) subscribeUpdates() (event.Subscription, error) {
	sub, err := h.bus.Subscribe(new(types.UploadState), eventbus.BufSize(256))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload update subscriber to %s: %w", h.uploadID, err)
	}

	updatesSub := &updatesSubscription{
		Subscription: sub,
		onClose: func(s *updatesSubscription) {
			h.activeSubsLk.Lock()
			defer h.activeSubsLk.Unlock()
			delete(h.activeSubs, s)
		},
	}

	h.activeSubsLk.Lock()
	defer h.activeSubsLk.Unlock()
	h.activeSubs[updatesSub] = struct{}{}

	return updatesSub, nil
}

func (h *uploadHandler) hasActiveSubscribers() bool {
	h.activeSubsLk.RLock()
	defer h.activeSubsLk.RUnlock()
	return len(h.activeSubs) > 0
}

// emit publishes a copy of the upload state to subscribers
func (h *uploadHandler) emit(st *types.UploadState) error {
	cp := *st
	cp.Attempts = make(map[string]int, len(st.Attempts))
	for k, v := range st.Attempts {
		cp.Attempts[k] = v
	}
	cp.Confirmations = append([]types.Confirmation(nil), st.Confirmations...)
	return h.emitter.Emit(cp)
}

// CancelledByUser returns true if the execution was stopped by a call to
// cancel.
func (h *uploadHandler) CancelledByUser() bool {
	return h.cancelledByUser.Load()
}

// cancel stops the execution before its next step and waits for the step in
// progress to return. Steps that already completed are not undone.
func (h *uploadHandler) cancel(ctx context.Context) {
	h.cancelledByUser.Store(true)
	h.execCancel()

	select {
	case <-h.done:
	case <-ctx.Done():
	case <-h.sagaCtx.Done():
	}
}

func (h *uploadHandler) finished() {
	h.doneOnce.Do(func() {
		close(h.done)
	})
}

func (h *uploadHandler) close() {
	h.execCancel()
	h.finished()
	_ = h.emitter.Close()
}
