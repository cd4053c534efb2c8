package types

import (
	"encoding/binary"
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// ErrInvalidCommitment 承诺编码不合法
var ErrInvalidCommitment = errors.New("invalid commitment encoding")

// CommitmentSize 编码后的承诺长度：8 字节长度 + 压缩 G1 点
const CommitmentSize = 8 + bls12381.SizeOfG1AffineCompressed

// Commitment 列承诺：G1 上的 Pedersen 承诺与列长度
//
// 长度是承诺值的一部分，内容相同但长度不同的列承诺不同。
type Commitment struct {
	Point  bls12381.G1Affine
	Length uint64
}

// Bytes 编码为 CommitmentSize 字节
func (c Commitment) Bytes() []byte {
	out := make([]byte, CommitmentSize)
	binary.BigEndian.PutUint64(out[:8], c.Length)
	p := c.Point.Bytes()
	copy(out[8:], p[:])
	return out
}

// SetBytes 从编码恢复（包含子群检查）
func (c *Commitment) SetBytes(b []byte) error {
	if len(b) != CommitmentSize {
		return fmt.Errorf("%w: len=%d", ErrInvalidCommitment, len(b))
	}
	var p bls12381.G1Affine
	if _, err := p.SetBytes(b[8:]); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommitment, err)
	}
	c.Point = p
	c.Length = binary.BigEndian.Uint64(b[:8])
	return nil
}

// Equal 点与长度都相同
func (c Commitment) Equal(o Commitment) bool {
	return c.Length == o.Length && c.Point.Equal(&o.Point)
}
