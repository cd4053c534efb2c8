package proof

import (
	"encoding/json"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/golang/snappy"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/pkg/types"
)

// codecVersion 编码格式版本
const codecVersion = 1

type wireField struct {
	Name   string       `json:"name"`
	Column types.Column `json:"column"`
}

type wireResult struct {
	Version     int            `json:"version"`
	Rows        int            `json:"rows"`
	Table       []wireField    `json:"table"`
	Public      []uint64       `json:"public,omitempty"`
	Commitments [][]byte       `json:"commitments,omitempty"`
	Rounds      [][]fr.Element `json:"rounds,omitempty"`
	Evaluations []fr.Element   `json:"evaluations,omitempty"`
	L           [][]byte       `json:"ipa_l,omitempty"`
	R           [][]byte       `json:"ipa_r,omitempty"`
	A           fr.Element     `json:"ipa_a"`
}

// Marshal 编码 VerifiableQueryResult（JSON + snappy，G1 点压缩）
func Marshal(r *VerifiableQueryResult) ([]byte, error) {
	if r == nil || r.Table == nil || r.Proof == nil || r.Proof.Opening == nil {
		return nil, ErrMalformedProof
	}
	w := &wireResult{
		Version:     codecVersion,
		Rows:        r.Table.Len(),
		Public:      r.Proof.Public,
		Rounds:      r.Proof.Rounds,
		Evaluations: r.Proof.Evaluations,
		A:           r.Proof.Opening.A,
	}
	for _, f := range r.Table.Fields() {
		w.Table = append(w.Table, wireField{Name: f.Name, Column: f.Column})
	}
	for _, c := range r.Proof.Commitments {
		w.Commitments = append(w.Commitments, c.Bytes())
	}
	for i := range r.Proof.Opening.L {
		l, rr := r.Proof.Opening.L[i].Bytes(), r.Proof.Opening.R[i].Bytes()
		w.L = append(w.L, l[:])
		w.R = append(w.R, rr[:])
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode query result: %w", err)
	}
	return snappy.Encode(nil, data), nil
}

// Unmarshal 解码 VerifiableQueryResult，点做子群检查
func Unmarshal(data []byte) (*VerifiableQueryResult, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
	}
	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
	}
	if w.Version != codecVersion {
		return nil, fmt.Errorf("%w: version=%d", ErrMalformedProof, w.Version)
	}
	if len(w.L) != len(w.R) {
		return nil, fmt.Errorf("%w: %d L points, %d R points", ErrMalformedProof, len(w.L), len(w.R))
	}

	if w.Rows < 0 {
		return nil, fmt.Errorf("%w: rows=%d", ErrMalformedProof, w.Rows)
	}
	fields := make([]types.Field, len(w.Table))
	for i, f := range w.Table {
		fields[i] = types.NewField(f.Name, f.Column)
	}
	table, err := types.NewTableWithRows(w.Rows, fields...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
	}

	p := &QueryProof{
		Public:      w.Public,
		Rounds:      w.Rounds,
		Evaluations: w.Evaluations,
		Opening:     &commitment.InnerProductProof{A: w.A},
	}
	for _, b := range w.Commitments {
		var c types.Commitment
		if err := c.SetBytes(b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedProof, err)
		}
		p.Commitments = append(p.Commitments, c)
	}
	for i := range w.L {
		var l, r bls12381.G1Affine
		if _, err := l.SetBytes(w.L[i]); err != nil {
			return nil, fmt.Errorf("%w: ipa L[%d]: %v", ErrMalformedProof, i, err)
		}
		if _, err := r.SetBytes(w.R[i]); err != nil {
			return nil, fmt.Errorf("%w: ipa R[%d]: %v", ErrMalformedProof, i, err)
		}
		p.Opening.L = append(p.Opening.L, l)
		p.Opening.R = append(p.Opening.R, r)
	}
	return &VerifiableQueryResult{Table: table, Proof: p}, nil
}

// Fingerprint 编码后证明的 base58(SHA3-256) 指纹，用于日志与展示
func Fingerprint(encoded []byte) string {
	sum := sha3.Sum256(encoded)
	return base58.Encode(sum[:])
}
