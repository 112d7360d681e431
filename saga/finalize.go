package saga

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

// finalize registers the blob, distributes its shards and certifies it.
// Each sub-step is checkpointed on its own, so that a failed certification
// is retried from certification.
func (s *Saga) finalize(ctx context.Context, uh *uploadHandler, st *types.UploadState) error {
	signer, err := s.clients.Signers.DestinationSigner(st.Payer, st.Receiver)
	if err != nil {
		return fmt.Errorf("getting signer for receiver %s: %w", st.Receiver, err)
	}
	s.uploadLogger.Infow(st.ID, "finalizing blob", "available", st.FinalizeAmount(), "quoted", st.Quote.TotalCost)

	var encoded *types.EncodedBlob
	if st.Checkpoint < uploadcheckpoints.BlobStored {
		encoded, err = s.encode(ctx, st)
		if err != nil {
			return err
		}
	}

	if st.Checkpoint < uploadcheckpoints.BlobRegistered {
		if err := s.register(ctx, st, encoded, signer); err != nil {
			return err
		}
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.BlobRegistered); err != nil {
			return err
		}
	}

	if st.Checkpoint < uploadcheckpoints.BlobStored {
		if err := s.distribute(ctx, st, encoded); err != nil {
			return err
		}
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.BlobStored); err != nil {
			return err
		}
	}

	if st.Checkpoint < uploadcheckpoints.Complete {
		if err := s.certify(ctx, st, signer); err != nil {
			return err
		}
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.Complete); err != nil {
			return err
		}
	}
	return nil
}

func (s *Saga) finalizePolicy(retryTxFailures bool) RetryPolicy {
	p := s.transientPolicy(s.cfg.FinalizeMaxAttempts)
	if retryTxFailures {
		p.Retryable = func(err error) bool {
			return errors.Is(err, types.ErrTransient) || errors.Is(err, types.ErrTxFailed)
		}
	}
	return p
}

func (s *Saga) encode(ctx context.Context, st *types.UploadState) (*types.EncodedBlob, error) {
	content, err := os.ReadFile(st.FilePath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %s", types.ErrValidation, st.FilePath, err)
	}
	if uint64(len(content)) != st.FileSizeBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, expected %d", types.ErrValidation, st.FilePath, len(content), st.FileSizeBytes)
	}

	var encoded *types.EncodedBlob
	err = s.retry(ctx, st, uploadcheckpoints.Finalizing, s.finalizePolicy(false), func(ctx context.Context, _ int) error {
		e, err := s.clients.Finalizer.Encode(ctx, content)
		if err != nil {
			return fmt.Errorf("encoding blob: %w", err)
		}
		if e == nil || e.BlobID == "" {
			return errors.New("encoder returned no blob id")
		}
		encoded = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	// the blob id is a function of the content, a resumed upload must encode
	// to the blob it registered
	if st.Blob.BlobID != "" && st.Blob.BlobID != encoded.BlobID {
		return nil, fmt.Errorf("content encodes to blob %s but blob %s was registered", encoded.BlobID, st.Blob.BlobID)
	}
	return encoded, nil
}

func (s *Saga) register(ctx context.Context, st *types.UploadState, encoded *types.EncodedBlob, signer types.Signer) error {
	params := types.RegisterParams{
		BlobID:    encoded.BlobID,
		RootHash:  encoded.RootHash,
		Size:      st.FileSizeBytes,
		Owner:     st.Receiver,
		Epochs:    st.Epochs,
		Deletable: st.Deletable,
	}

	var reg *types.Registration
	err := s.retry(ctx, st, uploadcheckpoints.Finalizing, s.finalizePolicy(true), func(ctx context.Context, _ int) error {
		// An earlier submission may have landed without its response
		// reaching us. The blob id, owner, epochs and deletable flag are
		// fixed by the request, so a match is this upload's registration.
		found, err := s.clients.Finalizer.LookupRegistration(ctx, params)
		if err != nil {
			return fmt.Errorf("looking up blob registration: %w", err)
		}
		if found != nil {
			if err := found.Check(); err != nil {
				return fmt.Errorf("registration found on ledger: %w", err)
			}
			s.uploadLogger.Infow(st.ID, "found blob registration from earlier attempt", "blob object id", found.BlobObjectID, "tx", found.TxID)
			reg = found
			return nil
		}

		r, err := s.clients.Finalizer.Register(ctx, params, signer)
		if err != nil {
			return fmt.Errorf("registering blob: %w", err)
		}
		if r == nil {
			return errors.New("registration returned no result")
		}
		if err := r.Check(); err != nil {
			return fmt.Errorf("registering blob: %w", err)
		}
		reg = r
		return nil
	})
	if err != nil {
		return err
	}

	if reg.BlobID != encoded.BlobID {
		return fmt.Errorf("registered blob id %s does not match encoded blob id %s", reg.BlobID, encoded.BlobID)
	}
	if reg.BlobObjectID == "" {
		return fmt.Errorf("registration %s returned no blob object id", reg.TxID)
	}

	st.Blob.BlobID = reg.BlobID
	st.Blob.BlobObjectID = reg.BlobObjectID
	st.Blob.RegistrationTxID = reg.TxID
	s.uploadLogger.Infow(st.ID, "blob registered", "blob id", reg.BlobID, "blob object id", reg.BlobObjectID, "tx", reg.TxID)
	return nil
}

func (s *Saga) distribute(ctx context.Context, st *types.UploadState, encoded *types.EncodedBlob) error {
	var confs []types.Confirmation
	err := s.retry(ctx, st, uploadcheckpoints.Finalizing, s.finalizePolicy(false), func(ctx context.Context, _ int) error {
		c, err := s.clients.Finalizer.Distribute(ctx, encoded.Plan, st.Blob.BlobObjectID)
		if err != nil {
			return fmt.Errorf("storing shards: %w", err)
		}
		if len(c) == 0 {
			return fmt.Errorf("%w: no storage node confirmed its shards", types.ErrTransient)
		}
		confs = c
		return nil
	})
	if err != nil {
		return err
	}

	st.Confirmations = confs
	s.uploadLogger.Infow(st.ID, "shards stored", "confirmations", len(confs))
	return nil
}

func (s *Saga) certify(ctx context.Context, st *types.UploadState, signer types.Signer) error {
	var res *types.TxResult
	err := s.retry(ctx, st, uploadcheckpoints.Finalizing, s.finalizePolicy(true), func(ctx context.Context, _ int) error {
		found, err := s.clients.Finalizer.LookupCertification(ctx, st.Blob.BlobObjectID)
		if err != nil {
			return fmt.Errorf("looking up blob certification: %w", err)
		}
		if found != nil && found.Check() == nil {
			s.uploadLogger.Infow(st.ID, "blob already certified", "blob object id", st.Blob.BlobObjectID, "tx", found.TxID)
			res = found
			return nil
		}

		r, err := s.clients.Finalizer.Certify(ctx, types.CertifyParams{
			BlobID:        st.Blob.BlobID,
			BlobObjectID:  st.Blob.BlobObjectID,
			Deletable:     st.Deletable,
			Confirmations: st.Confirmations,
		}, signer)
		if err != nil {
			return fmt.Errorf("certifying blob: %w", err)
		}
		if r == nil {
			return errors.New("certification returned no result")
		}
		// a transaction digest alone is not a certification
		if err := r.Check(); err != nil {
			return fmt.Errorf("certifying blob: %w", err)
		}
		res = r
		return nil
	})
	if err != nil {
		return err
	}

	st.Blob.CertificationTxID = res.TxID
	s.uploadLogger.Infow(st.ID, "blob certified", "blob id", st.Blob.BlobID, "tx", res.TxID)
	return nil
}
