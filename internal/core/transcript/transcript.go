// Package transcript 提供显式传递的 Fiat–Shamir 转录器
//
// 🎯 **用法**
// 证明方与验证方按完全相同的顺序 Append 公共数据并抽取挑战，
// 每次抽取的挑战都链接之前全部转录内容，任何顺序或内容差异都会导致挑战不同。
//
// 底层使用 gnark-crypto 的 fiat-shamir 转录器（每次挑战一个实例，
// 通过链式状态串联），哈希为 SHA3-256。
package transcript

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
	"golang.org/x/crypto/sha3"

	"github.com/weisyn/proofsql/pkg/types"
)

// Transcript Fiat–Shamir 转录器，非并发安全
type Transcript struct {
	h       hash.Hash
	state   []byte
	pending [][]byte
	rounds  int
}

// New 以协议标签初始化转录器
func New(protocol string) *Transcript {
	h := sha3.New256()
	h.Write([]byte(protocol))
	return &Transcript{
		h:     h,
		state: h.Sum(nil),
	}
}

func frame(label string, data []byte) []byte {
	buf := make([]byte, 0, 2*binary.MaxVarintLen64+len(label)+len(data))
	buf = binary.AppendUvarint(buf, uint64(len(label)))
	buf = append(buf, label...)
	buf = binary.AppendUvarint(buf, uint64(len(data)))
	buf = append(buf, data...)
	return buf
}

// Append 追加带标签的原始字节
func (t *Transcript) Append(label string, data []byte) {
	t.pending = append(t.pending, frame(label, data))
}

// AppendUint64 追加整数
func (t *Transcript) AppendUint64(label string, v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	t.Append(label, buf[:])
}

// AppendScalars 追加域元素序列
func (t *Transcript) AppendScalars(label string, values ...fr.Element) {
	buf := make([]byte, 0, len(values)*fr.Bytes)
	for i := range values {
		b := values[i].Bytes()
		buf = append(buf, b[:]...)
	}
	t.Append(label, buf)
}

// AppendCommitments 追加承诺序列
func (t *Transcript) AppendCommitments(label string, commitments ...types.Commitment) {
	buf := make([]byte, 0, len(commitments)*types.CommitmentSize)
	for _, c := range commitments {
		buf = append(buf, c.Bytes()...)
	}
	t.Append(label, buf)
}

// Challenge 抽取一个挑战域元素
func (t *Transcript) Challenge(label string) fr.Element {
	id := fmt.Sprintf("%s#%d", label, t.rounds)
	fs := fiatshamir.NewTranscript(t.h, id)
	if err := fs.Bind(id, t.state); err != nil {
		panic(fmt.Sprintf("transcript bind: %v", err))
	}
	for _, p := range t.pending {
		if err := fs.Bind(id, p); err != nil {
			panic(fmt.Sprintf("transcript bind: %v", err))
		}
	}
	out, err := fs.ComputeChallenge(id)
	if err != nil {
		// 只有哈希写入失败才会走到这里
		panic(fmt.Sprintf("transcript challenge: %v", err))
	}
	t.state = out
	t.pending = nil
	t.rounds++

	var e fr.Element
	e.SetBytes(out)
	return e
}

// Challenges 连续抽取 n 个挑战
func (t *Transcript) Challenges(label string, n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := range out {
		out[i] = t.Challenge(label)
	}
	return out
}

// State 当前链式状态的副本（用于诊断与指纹）
func (t *Transcript) State() []byte {
	return append([]byte{}, t.state...)
}
