package saga

import (
	"sync"

	"github.com/ipfs/go-cid"
	"golang.org/x/xerrors"
)

// uploadExecs keeps track of executing uploads by id
type uploadExecs struct {
	lk  sync.RWMutex
	hds map[cid.Cid]*uploadHandler
}

func newUploadExecs() *uploadExecs {
	return &uploadExecs{
		hds: make(map[cid.Cid]*uploadHandler),
	}
}

// track registers the handler, unless the upload is already executing
func (p *uploadExecs) track(uh *uploadHandler) error {
	p.lk.Lock()
	defer p.lk.Unlock()

	if _, ok := p.hds[uh.uploadID]; ok {
		return xerrors.Errorf("upload %s: %w", uh.uploadID, ErrUploadInProgress)
	}
	p.hds[uh.uploadID] = uh
	return nil
}

func (p *uploadExecs) get(id cid.Cid) (*uploadHandler, error) {
	p.lk.RLock()
	defer p.lk.RUnlock()

	uh, ok := p.hds[id]
	if !ok {
		return nil, xerrors.Errorf("upload %s: %w", id, ErrUploadNotExecuting)
	}
	return uh, nil
}

func (p *uploadExecs) del(id cid.Cid) {
	p.lk.Lock()
	defer p.lk.Unlock()

	delete(p.hds, id)
}

func (p *uploadExecs) count() int {
	p.lk.RLock()
	defer p.lk.RUnlock()
	return len(p.hds)
}
