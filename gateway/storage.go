package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhuhnke/solana-walrus/api"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

const blobRegisteredEvent = "::events::BlobRegistered"

// Storage prices, writes and reads blobs on the storage network.
type Storage struct {
	g *Gateway
}

var (
	_ types.Quoter           = (*Storage)(nil)
	_ types.StorageFinalizer = (*Storage)(nil)
	_ types.BlobReader       = (*Storage)(nil)
)

func (s *Storage) StorageCost(ctx context.Context, sizeBytes uint64, epochs uint32) (*types.StorageCost, error) {
	c, err := s.g.api.StorageCost(ctx, sizeBytes, epochs)
	if err != nil {
		return nil, mapErr(err)
	}
	if c == nil {
		return nil, errors.New("gateway returned no storage cost")
	}
	return c, nil
}

func (s *Storage) Encode(ctx context.Context, content []byte) (*types.EncodedBlob, error) {
	e, err := s.g.api.BlobEncode(ctx, content)
	if err != nil {
		return nil, mapErr(err)
	}
	if e == nil || e.BlobID == "" {
		return nil, errors.New("gateway returned no encoded blob")
	}
	return e, nil
}

// Register registers the blob and returns the ids read from the registration
// event. A failed transaction is returned as is, for the caller to check.
func (s *Storage) Register(ctx context.Context, p types.RegisterParams, signer types.Signer) (*types.Registration, error) {
	tx, err := s.g.api.BlobBuildRegister(ctx, api.RegisterRequest{RegisterParams: p, Sender: signer.Address()})
	if err != nil {
		return nil, mapErr(err)
	}
	r, err := s.g.execute(ctx, tx, signer)
	if err != nil {
		return nil, err
	}

	reg := &types.Registration{TxResult: r.Result()}
	if r.Status != types.TxStatusSuccess {
		return reg, nil
	}
	ev, err := r.Event(blobRegisteredEvent)
	if err != nil {
		return nil, err
	}
	reg.BlobID = ev.Fields["blob_id"]
	reg.BlobObjectID = ev.Fields["object_id"]
	if reg.BlobID == "" || reg.BlobObjectID == "" {
		return nil, fmt.Errorf("registration event of tx %s is missing blob_id or object_id", r.TxID)
	}
	return reg, nil
}

// LookupRegistration returns a successful registration of p found by the
// gateway, or nil.
func (s *Storage) LookupRegistration(ctx context.Context, p types.RegisterParams) (*types.Registration, error) {
	reg, err := s.g.api.BlobFindRegistration(ctx, p)
	if err != nil {
		return nil, mapErr(err)
	}
	if reg == nil {
		return nil, nil
	}
	if reg.BlobObjectID == "" {
		return nil, fmt.Errorf("registration %s of blob %s has no blob object id", reg.TxID, p.BlobID)
	}
	return reg, nil
}

func (s *Storage) Distribute(ctx context.Context, plan types.ShardPlan, blobObjectID string) ([]types.Confirmation, error) {
	c, err := s.g.api.BlobStore(ctx, blobObjectID, plan)
	return c, mapErr(err)
}

func (s *Storage) Certify(ctx context.Context, p types.CertifyParams, signer types.Signer) (*types.TxResult, error) {
	tx, err := s.g.api.BlobBuildCertify(ctx, api.CertifyRequest{CertifyParams: p, Sender: signer.Address()})
	if err != nil {
		return nil, mapErr(err)
	}
	r, err := s.g.execute(ctx, tx, signer)
	if err != nil {
		return nil, err
	}
	res := r.Result()
	return &res, nil
}

func (s *Storage) LookupCertification(ctx context.Context, blobObjectID string) (*types.TxResult, error) {
	res, err := s.g.api.BlobFindCertification(ctx, blobObjectID)
	return res, mapErr(err)
}

func (s *Storage) Delete(ctx context.Context, blobObjectID string, owner string, signer types.Signer) (*types.TxResult, error) {
	tx, err := s.g.api.BlobBuildDelete(ctx, blobObjectID, owner)
	if err != nil {
		return nil, mapErr(err)
	}
	r, err := s.g.execute(ctx, tx, signer)
	if err != nil {
		return nil, err
	}
	res := r.Result()
	return &res, nil
}

func (s *Storage) ReadBlob(ctx context.Context, blobID string) ([]byte, error) {
	b, err := s.g.api.BlobRead(ctx, blobID)
	return b, mapErr(err)
}

func (s *Storage) BlobAttributes(ctx context.Context, blobObjectID string) (map[string]string, error) {
	a, err := s.g.api.BlobAttributes(ctx, blobObjectID)
	return a, mapErr(err)
}
