package fielddef

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"

	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

type FieldDefinition interface {
	FieldPtr() interface{}
	Marshall() (interface{}, error)
	Unmarshall() error
}

type FieldDef struct {
	F interface{}
}

var _ FieldDefinition = (*FieldDef)(nil)

func (fd *FieldDef) FieldPtr() interface{} {
	return fd.F
}

func (fd *FieldDef) Marshall() (interface{}, error) {
	return fd.F, nil
}

func (fd *FieldDef) Unmarshall() error {
	return nil
}

type CidFieldDef struct {
	cidStr sql.NullString
	F      *cid.Cid
}

func (fd *CidFieldDef) FieldPtr() interface{} {
	return &fd.cidStr
}

func (fd *CidFieldDef) Marshall() (interface{}, error) {
	if fd.F == nil || !fd.F.Defined() {
		return nil, nil
	}
	return fd.F.String(), nil
}

func (fd *CidFieldDef) Unmarshall() error {
	if !fd.cidStr.Valid {
		return nil
	}

	c, err := cid.Parse(fd.cidStr.String)
	if err != nil {
		return fmt.Errorf("parsing CID from string '%s': %w", fd.cidStr.String, err)
	}

	*fd.F = c
	return nil
}

type MultihashFieldDef struct {
	marshalled []byte
	F          *multihash.Multihash
}

func (fd *MultihashFieldDef) FieldPtr() interface{} {
	return &fd.marshalled
}

func (fd *MultihashFieldDef) Marshall() (interface{}, error) {
	return []byte(*fd.F), nil
}

func (fd *MultihashFieldDef) Unmarshall() error {
	if len(fd.marshalled) == 0 {
		*fd.F = nil
		return nil
	}
	mh, err := multihash.Cast(append([]byte(nil), fd.marshalled...))
	if err != nil {
		return fmt.Errorf("parsing multihash: %w", err)
	}
	*fd.F = mh
	return nil
}

// AmountFieldDef stores an amount as a decimal string of base units.
// sqlite integers are signed 64 bit so they cannot hold every uint64.
type AmountFieldDef struct {
	marshalled sql.NullString
	F          *types.Amount
}

func (fd *AmountFieldDef) FieldPtr() interface{} {
	return &fd.marshalled
}

func (fd *AmountFieldDef) Marshall() (interface{}, error) {
	return strconv.FormatUint(uint64(*fd.F), 10), nil
}

func (fd *AmountFieldDef) Unmarshall() error {
	if !fd.marshalled.Valid {
		*fd.F = 0
		return nil
	}
	v, err := strconv.ParseUint(fd.marshalled.String, 10, 64)
	if err != nil {
		return fmt.Errorf("parsing amount '%s': %w", fd.marshalled.String, err)
	}
	*fd.F = types.Amount(v)
	return nil
}

type CkptFieldDef struct {
	marshalled string
	F          *uploadcheckpoints.Checkpoint
}

func (fd *CkptFieldDef) FieldPtr() interface{} {
	return &fd.marshalled
}

func (fd *CkptFieldDef) Marshall() (interface{}, error) {
	return fd.F.String(), nil
}

func (fd *CkptFieldDef) Unmarshall() error {
	cp, err := uploadcheckpoints.FromString(fd.marshalled)
	if err != nil {
		return fmt.Errorf("parsing checkpoint from string '%s': %w", fd.marshalled, err)
	}

	*fd.F = cp
	return nil
}

// JSONFieldDef stores F as a JSON document. A NULL column leaves F untouched.
type JSONFieldDef struct {
	marshalled sql.NullString
	F          interface{}
}

func (fd *JSONFieldDef) FieldPtr() interface{} {
	return &fd.marshalled
}

func (fd *JSONFieldDef) Marshall() (interface{}, error) {
	b, err := json.Marshal(fd.F)
	if err != nil {
		return nil, fmt.Errorf("marshalling json field: %w", err)
	}
	return string(b), nil
}

func (fd *JSONFieldDef) Unmarshall() error {
	if !fd.marshalled.Valid || fd.marshalled.String == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(fd.marshalled.String), fd.F); err != nil {
		return fmt.Errorf("unmarshalling json field: %w", err)
	}
	return nil
}

type feeRecord struct {
	Requested  types.Amount `json:"requested"`
	FeePercent string       `json:"feePercent"`
	Debited    types.Amount `json:"debited"`
	SourceTxID string       `json:"sourceTxId"`
}

// FeeFieldDef stores a FeeOutcome. On load the outcome is rebuilt from the
// requested amount and the fee percent, and the stored debit must match.
type FeeFieldDef struct {
	marshalled sql.NullString
	F          *types.FeeOutcome
}

func (fd *FeeFieldDef) FieldPtr() interface{} {
	return &fd.marshalled
}

func (fd *FeeFieldDef) Marshall() (interface{}, error) {
	if fd.F.SourceTxID == "" && fd.F.AmountRequested() == 0 {
		return nil, nil
	}
	b, err := json.Marshal(feeRecord{
		Requested:  fd.F.AmountRequested(),
		FeePercent: fd.F.FeePercent().String(),
		Debited:    fd.F.AmountDebited(),
		SourceTxID: fd.F.SourceTxID,
	})
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (fd *FeeFieldDef) Unmarshall() error {
	if !fd.marshalled.Valid {
		return nil
	}
	var rec feeRecord
	if err := json.Unmarshal([]byte(fd.marshalled.String), &rec); err != nil {
		return fmt.Errorf("unmarshalling fee outcome: %w", err)
	}
	pct, err := types.ParseFeePercent(rec.FeePercent)
	if err != nil {
		return err
	}
	out, err := types.SplitFee(rec.Requested, pct)
	if err != nil {
		return err
	}
	if out.AmountDebited() != rec.Debited {
		return fmt.Errorf("stored fee %s does not match %s of %s", rec.Debited, pct, rec.Requested)
	}
	out.SourceTxID = rec.SourceTxID
	*fd.F = out
	return nil
}
