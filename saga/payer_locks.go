package saga

import (
	"context"
	"sync"
)

// payerLocks serializes the steps that spend from the same payer, so that
// two uploads by one payer never race on its balance or its nonce.
type payerLocks struct {
	lk    sync.Mutex
	locks map[string]*payerLock
}

type payerLock struct {
	ch   chan struct{}
	refs int
}

func newPayerLocks() *payerLocks {
	return &payerLocks{locks: make(map[string]*payerLock)}
}

// lock blocks until the payer's lock is held or ctx is done. The returned
// function releases the lock.
func (p *payerLocks) lock(ctx context.Context, payer string) (func(), error) {
	p.lk.Lock()
	pl, ok := p.locks[payer]
	if !ok {
		pl = &payerLock{ch: make(chan struct{}, 1)}
		p.locks[payer] = pl
	}
	pl.refs++
	p.lk.Unlock()

	select {
	case pl.ch <- struct{}{}:
		return func() {
			<-pl.ch
			p.release(payer, pl)
		}, nil
	case <-ctx.Done():
		p.release(payer, pl)
		return nil, ctx.Err()
	}
}

func (p *payerLocks) release(payer string, pl *payerLock) {
	p.lk.Lock()
	defer p.lk.Unlock()

	pl.refs--
	if pl.refs == 0 {
		delete(p.locks, payer)
	}
}
