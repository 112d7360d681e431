package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// UploadParams are the inputs used to build an UploadRequest.
type UploadParams struct {
	FilePath      string
	FileHash      multihash.Multihash
	FileSizeBytes uint64
	Epochs        uint32
	Deletable     bool
	// Payer is the base58 public key of the source ledger signer
	Payer string
	// Receiver is the destination ledger address. If empty it is derived
	// deterministically from the payer when the upload starts.
	Receiver string
}

// UploadRequest is an immutable request to move a file into blob storage.
// It can only be created with NewUploadRequest or NewUploadRequestFromFile.
type UploadRequest struct {
	p UploadParams
}

func NewUploadRequest(p UploadParams) (UploadRequest, error) {
	if p.FilePath == "" {
		return UploadRequest{}, fmt.Errorf("%w: missing file path", ErrValidation)
	}
	if p.FileSizeBytes == 0 {
		return UploadRequest{}, fmt.Errorf("%w: file %s is empty", ErrValidation, p.FilePath)
	}
	if p.Epochs == 0 {
		return UploadRequest{}, fmt.Errorf("%w: epochs must be greater than zero", ErrValidation)
	}
	if p.Payer == "" {
		return UploadRequest{}, fmt.Errorf("%w: missing payer identity", ErrValidation)
	}
	dh, err := multihash.Decode(p.FileHash)
	if err != nil {
		return UploadRequest{}, fmt.Errorf("%w: invalid file hash: %s", ErrValidation, err)
	}
	if dh.Code != multihash.SHA2_256 {
		return UploadRequest{}, fmt.Errorf("%w: file hash must be sha2-256, got %s", ErrValidation, multihash.Codes[dh.Code])
	}

	// copy the hash so that the caller cannot mutate the request afterwards
	p.FileHash = append(multihash.Multihash(nil), p.FileHash...)
	return UploadRequest{p: p}, nil
}

// NewUploadRequestFromFile reads the file at path to compute its size and
// content hash, and builds an UploadRequest from it.
func NewUploadRequestFromFile(path string, epochs uint32, deletable bool, payer, receiver string) (UploadRequest, error) {
	hash, size, err := HashFile(path)
	if err != nil {
		return UploadRequest{}, err
	}
	return NewUploadRequest(UploadParams{
		FilePath:      path,
		FileHash:      hash,
		FileSizeBytes: size,
		Epochs:        epochs,
		Deletable:     deletable,
		Payer:         payer,
		Receiver:      receiver,
	})
}

// HashFile returns the sha2-256 multihash and the size of the file at path.
func HashFile(path string) (multihash.Multihash, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: opening file: %s", ErrValidation, err)
	}
	defer f.Close() //nolint:errcheck

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, fmt.Errorf("hashing file %s: %w", path, err)
	}
	mh, err := multihash.Encode(h.Sum(nil), multihash.SHA2_256)
	if err != nil {
		return nil, 0, fmt.Errorf("encoding file hash: %w", err)
	}
	return mh, uint64(n), nil
}

func (r UploadRequest) FilePath() string               { return r.p.FilePath }
func (r UploadRequest) FileHash() multihash.Multihash { return append(multihash.Multihash(nil), r.p.FileHash...) }
func (r UploadRequest) FileSizeBytes() uint64          { return r.p.FileSizeBytes }
func (r UploadRequest) Epochs() uint32                 { return r.p.Epochs }
func (r UploadRequest) Deletable() bool                { return r.p.Deletable }
func (r UploadRequest) Payer() string                  { return r.p.Payer }
func (r UploadRequest) Receiver() string               { return r.p.Receiver }

// Params returns a copy of the parameters the request was built from.
func (r UploadRequest) Params() UploadParams {
	p := r.p
	p.FileHash = r.FileHash()
	return p
}

// Digest identifies the request. It covers the content hash and the
// registration parameters but not the file path, so that the same content
// uploaded twice by the same payer maps to the same upload.
func (r UploadRequest) Digest() cid.Cid {
	var buf []byte
	buf = appendField(buf, r.p.FileHash)
	buf = binary.BigEndian.AppendUint64(buf, r.p.FileSizeBytes)
	buf = binary.BigEndian.AppendUint32(buf, r.p.Epochs)
	if r.p.Deletable {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendField(buf, []byte(r.p.Payer))
	buf = appendField(buf, []byte(r.p.Receiver))

	mh, err := multihash.Sum(buf, multihash.SHA2_256, -1)
	if err != nil {
		// sha2-256 is always available
		panic(err)
	}
	return cid.NewCidV1(cid.Raw, mh)
}

// IdempotencyKey is the key under which a step with an on-chain side effect
// is recorded, both locally and as a memo on the ledger.
func (r UploadRequest) IdempotencyKey(step string) string {
	return IdempotencyKey(r.Digest(), step)
}

func IdempotencyKey(digest cid.Cid, step string) string {
	h := sha256.New()
	h.Write(digest.Bytes())
	h.Write([]byte{':'})
	h.Write([]byte(step))
	return hex.EncodeToString(h.Sum(nil))
}

func appendField(buf []byte, b []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
	return append(buf, b...)
}
