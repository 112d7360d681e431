package saga

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

var (
	ErrUploadNotExecuting = errors.New("upload is not executing")
	ErrUploadInProgress   = errors.New("upload is already executing")
	ErrUploadFailedFatal  = errors.New("upload failed and cannot be resumed")
	ErrSagaClosed         = errors.New("saga is closed")
)

// UploadError is returned when an upload stops on a failure. It carries the
// state that failed, the last checkpoint that completed and the artifact it
// produced, so that the caller can decide to resume.
type UploadError struct {
	ID             cid.Cid
	State          uploadcheckpoints.State
	LastCheckpoint uploadcheckpoints.Checkpoint
	Artifact       interface{}
	Err            error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed in %s after checkpoint %s: %s", e.ID, e.State, e.LastCheckpoint, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
