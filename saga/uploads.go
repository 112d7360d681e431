package saga

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/ipfs/go-cid"
	"github.com/libp2p/go-libp2p/core/event"

	"github.com/jhuhnke/solana-walrus/db"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

func (s *Saga) Status(ctx context.Context, id cid.Cid) (*types.UploadState, error) {
	return s.uploadsDB.ByID(ctx, id)
}

func (s *Saga) List(ctx context.Context, filter *db.FilterOptions, offset, limit int) ([]*types.UploadState, error) {
	return s.uploadsDB.List(ctx, filter, offset, limit)
}

func (s *Saga) Count(ctx context.Context, filter *db.FilterOptions) (int, error) {
	return s.uploadsDB.Count(ctx, filter)
}

func (s *Saga) Logs(ctx context.Context, id cid.Cid) ([]db.UploadLog, error) {
	return s.logsDB.Logs(ctx, id)
}

// FeesCollected is the sum of the fees confirmed on the source ledger.
func (s *Saga) FeesCollected(ctx context.Context) (types.Amount, error) {
	return s.feeDB.TotalCollected(ctx)
}

// Download reads the content of a blob from the storage network.
func (s *Saga) Download(ctx context.Context, blobID string) ([]byte, error) {
	if blobID == "" {
		return nil, fmt.Errorf("%w: missing blob id", types.ErrValidation)
	}
	return s.clients.Reader.ReadBlob(ctx, blobID)
}

// Attributes reads the attributes attached to a blob object.
func (s *Saga) Attributes(ctx context.Context, blobObjectID string) (map[string]string, error) {
	if blobObjectID == "" {
		return nil, fmt.Errorf("%w: missing blob object id", types.ErrValidation)
	}
	return s.clients.Reader.BlobAttributes(ctx, blobObjectID)
}

// SubscribeUpdates subscribes to the state updates of an executing upload.
// Events are values of type types.UploadState.
func (s *Saga) SubscribeUpdates(id cid.Cid) (event.Subscription, error) {
	uh, err := s.execs.get(id)
	if err != nil {
		return nil, err
	}
	return uh.subscribeUpdates()
}

// Cancel stops an executing upload before its next step. Steps that already
// completed are not undone and the upload can be resumed later.
func (s *Saga) Cancel(ctx context.Context, id cid.Cid) error {
	uh, err := s.execs.get(id)
	if err != nil {
		return err
	}
	uh.cancel(ctx)
	return nil
}

// ResumeActive resumes every upload that has not completed and did not fail
// fatally, and waits for them.
func (s *Saga) ResumeActive(ctx context.Context) error {
	uploads, err := s.uploadsDB.List(ctx, nil, 0, 0)
	if err != nil {
		return fmt.Errorf("listing uploads: %w", err)
	}

	var lk sync.Mutex
	var merr *multierror.Error
	var wg sync.WaitGroup
	for _, st := range uploads {
		if st.IsTerminal() {
			continue
		}
		st := st
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.resume(ctx, st)
			if err == nil || errors.Is(err, ErrUploadInProgress) {
				return
			}
			lk.Lock()
			merr = multierror.Append(merr, err)
			lk.Unlock()
		}()
	}
	wg.Wait()
	return merr.ErrorOrNil()
}

// Delete deletes a deletable blob. owner is the payer identity the upload
// was made with: it resolves the receiver address that owns the blob object.
func (s *Saga) Delete(ctx context.Context, blobObjectID string, owner string) (*types.TxResult, error) {
	if blobObjectID == "" || owner == "" {
		return nil, fmt.Errorf("%w: blob object id and owner are required", types.ErrValidation)
	}

	var receiver string
	st, err := s.uploadsDB.ByBlobObjectID(ctx, blobObjectID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		receiver, err = s.clients.Signers.DeriveReceiver(owner)
		if err != nil {
			return nil, fmt.Errorf("deriving receiver for %s: %w", owner, err)
		}
	case err != nil:
		return nil, err
	default:
		if st.Payer != owner {
			return nil, fmt.Errorf("%w: blob object %s was uploaded by %s", types.ErrUnauthorized, blobObjectID, st.Payer)
		}
		if !st.Deletable {
			return nil, fmt.Errorf("%w: blob object %s is not deletable", types.ErrValidation, blobObjectID)
		}
		receiver = st.Receiver
	}

	signer, err := s.clients.Signers.DestinationSigner(owner, receiver)
	if err != nil {
		return nil, fmt.Errorf("getting signer for receiver %s: %w", receiver, err)
	}

	res, err := s.clients.Finalizer.Delete(ctx, blobObjectID, receiver, signer)
	if err != nil {
		return nil, fmt.Errorf("deleting blob object %s: %w", blobObjectID, err)
	}
	if res == nil {
		return nil, fmt.Errorf("deleting blob object %s: no result", blobObjectID)
	}
	if err := res.Check(); err != nil {
		return nil, fmt.Errorf("deleting blob object %s: %w", blobObjectID, err)
	}

	if st != nil {
		s.uploadLogger.Infow(st.ID, "blob deleted", "blob object id", blobObjectID, "tx", res.TxID)
	} else {
		log.Infow("blob deleted", "blob object id", blobObjectID, "tx", res.TxID)
	}
	return res, nil
}
