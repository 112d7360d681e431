package saga

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/multiformats/go-multihash"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/jhuhnke/solana-walrus/metrics"
	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

func (s *Saga) doUpload(uh *uploadHandler, st *types.UploadState) error {
	ctx := uh.execCtx

	// clear the error of a previous failed run
	if st.Err != "" {
		s.uploadLogger.Infow(st.ID, "resuming failed upload", "checkpoint", st.Checkpoint, "previous error", st.Err)
		st.Err = ""
		st.Retry = types.UploadRetryAuto
	}
	st.State = st.Checkpoint.Next()
	if err := s.persist(uh, st); err != nil {
		return s.failUpload(uh, st, err)
	}

	// the content is needed until the shards are stored
	if st.Checkpoint < uploadcheckpoints.BlobStored {
		if err := checkContent(st.FilePath, st.FileHash); err != nil {
			return s.failUpload(uh, st, err)
		}
	}

	if st.Receiver == "" {
		if err := s.resolveReceiver(uh, st); err != nil {
			return s.failUpload(uh, st, err)
		}
	}

	// a quote from an earlier run is refreshed before the fee is paid,
	// unless the fee was already collected against it
	quotedThisRun := false

	// Quote
	if st.Checkpoint < uploadcheckpoints.Quoted {
		if err := s.quoteUpload(ctx, st); err != nil {
			return s.failUpload(uh, st, fmt.Errorf("failed to quote storage cost: %w", err))
		}
		quotedThisRun = true
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.Quoted); err != nil {
			return s.failUpload(uh, st, err)
		}
	}

	// Collect the protocol fee
	if st.Checkpoint < uploadcheckpoints.FeeCollected {
		if err := s.collectFee(ctx, uh, st, !quotedThisRun); err != nil {
			return s.failUpload(uh, st, fmt.Errorf("failed to collect fee: %w", err))
		}
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.FeeCollected); err != nil {
			return s.failUpload(uh, st, err)
		}
	}

	// Bridge the remainder to the destination ledger
	if st.Checkpoint < uploadcheckpoints.BridgeInitiated {
		if err := s.initiateBridge(ctx, st); err != nil {
			return s.failUpload(uh, st, fmt.Errorf("failed to initiate bridge transfer: %w", err))
		}
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.BridgeInitiated); err != nil {
			return s.failUpload(uh, st, err)
		}
	}

	if st.Checkpoint < uploadcheckpoints.BridgeAttested {
		if err := s.awaitAttestation(ctx, st); err != nil {
			return s.failUpload(uh, st, fmt.Errorf("failed to get bridge attestation: %w", err))
		}
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.BridgeAttested); err != nil {
			return s.failUpload(uh, st, err)
		}
	}

	if st.Checkpoint < uploadcheckpoints.BridgeClaimed {
		if err := s.claimBridge(ctx, st); err != nil {
			return s.failUpload(uh, st, fmt.Errorf("failed to claim bridge transfer: %w", err))
		}
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.BridgeClaimed); err != nil {
			return s.failUpload(uh, st, err)
		}
	}

	// Swap the bridged asset for the storage token
	if st.Checkpoint < uploadcheckpoints.Swapped {
		if err := s.swap(ctx, st); err != nil {
			return s.failUpload(uh, st, fmt.Errorf("failed to swap bridged funds: %w", err))
		}
		if err := s.updateCheckpoint(uh, st, uploadcheckpoints.Swapped); err != nil {
			return s.failUpload(uh, st, err)
		}
	}

	// Finalize the blob on the storage network
	if st.Checkpoint < uploadcheckpoints.Complete {
		if err := s.finalize(ctx, uh, st); err != nil {
			return s.failUpload(uh, st, fmt.Errorf("failed to finalize blob: %w", err))
		}
	}

	s.uploadLogger.Infow(st.ID, "upload complete", "blob id", st.Blob.BlobID, "blob object id", st.Blob.BlobObjectID)
	return nil
}

func (s *Saga) resolveReceiver(uh *uploadHandler, st *types.UploadState) error {
	receiver := st.RequestedReceiver
	if receiver == "" {
		r, err := s.clients.Signers.DeriveReceiver(st.Payer)
		if err != nil {
			return fmt.Errorf("deriving receiver for %s: %w", st.Payer, err)
		}
		receiver = r
	}
	st.Receiver = receiver
	s.uploadLogger.Infow(st.ID, "resolved receiver", "receiver", receiver)
	return s.persist(uh, st)
}

// checkContent verifies that the file still holds the content the request
// was made for.
func checkContent(path string, want multihash.Multihash) error {
	got, _, err := types.HashFile(path)
	if err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%w: content of %s does not match the request hash", types.ErrValidation, path)
	}
	return nil
}

// updateCheckpoint records that a step completed. The state is persisted
// with the saga context, so that a step whose side effect already happened
// is recorded even if the upload was cancelled meanwhile.
func (s *Saga) updateCheckpoint(uh *uploadHandler, st *types.UploadState, cp uploadcheckpoints.Checkpoint) error {
	st.Checkpoint = cp
	st.CheckpointAt = s.clock.Now()
	st.State = cp.Next()
	if err := s.persist(uh, st); err != nil {
		return err
	}

	s.uploadLogger.Infow(st.ID, "reached checkpoint", "checkpoint", cp, "next", st.State)
	_ = stats.RecordWithTags(s.ctx, []tag.Mutator{tag.Upsert(metrics.Step, cp.String())}, metrics.Checkpoints.M(1))
	return nil
}

func (s *Saga) persist(uh *uploadHandler, st *types.UploadState) error {
	if err := s.uploadsDB.Update(s.ctx, st); err != nil {
		return fmt.Errorf("failed to persist upload state: %w", err)
	}
	s.fireEventUploadUpdate(uh, st)
	return nil
}

func (s *Saga) fireEventUploadUpdate(uh *uploadHandler, st *types.UploadState) {
	if !uh.hasActiveSubscribers() {
		return
	}
	if err := uh.emit(st); err != nil {
		log.Warnw("publishing upload state update", "id", st.ID, "err", err)
	}
}

// failUpload records the failure and returns it as an UploadError. A failure
// caused by the saga shutting down is not recorded, the upload is resumed
// on the next start.
func (s *Saga) failUpload(uh *uploadHandler, st *types.UploadState, err error) error {
	if s.ctx.Err() != nil {
		s.uploadLogger.Infow(st.ID, "upload interrupted by shutdown", "checkpoint", st.Checkpoint, "state", st.State)
		return fmt.Errorf("upload %s interrupted in %s: %w", st.ID, st.State, err)
	}

	retry := types.UploadRetryManual
	switch {
	case uh.CancelledByUser() || errors.Is(err, context.Canceled):
		err = fmt.Errorf("upload cancelled: %w", err)
	case errors.Is(err, types.ErrValidation):
		retry = types.UploadRetryFatal
	}

	failedIn := st.State
	st.Err = err.Error()
	st.Retry = retry
	st.State = uploadcheckpoints.Failed
	if perr := s.persist(uh, st); perr != nil {
		log.Errorw("failed to persist upload failure", "id", st.ID, "err", perr)
	}

	s.uploadLogger.LogError(st.ID, fmt.Sprintf("upload failed in %s", failedIn), err)
	_ = stats.RecordWithTags(s.ctx,
		[]tag.Mutator{tag.Upsert(metrics.Step, string(failedIn)), tag.Upsert(metrics.FailureType, string(retry))},
		metrics.UploadsFailed.M(1))

	return &UploadError{
		ID:             st.ID,
		State:          failedIn,
		LastCheckpoint: st.Checkpoint,
		Artifact:       st.LastArtifact(),
		Err:            err,
	}
}
