// Package commitment 提供列向量的 Pedersen 承诺与内积论证
//
// 🎯 **承诺方案**
// C(v) = Σ v_i·G_i，生成元由 HashToG1(index, domainTag) 透明派生，
// 证明方与验证方只需约定 domainTag 与数量即可得到相同的公共参数。
// 承诺是非隐藏的、加法同态的：C(a)+C(b) = C(a+b)。
package commitment

import (
	"encoding/binary"
	"fmt"
	"runtime"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/sha3"

	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/pkg/types"
)

// PublicSetup 承诺方案的公共参数
type PublicSetup struct {
	generators []bls12381.G1Affine
	u          bls12381.G1Affine
	domainTag  string
	msmConfig  ecc.MultiExpConfig

	fingerprint []byte
}

// Option 公共参数选项
type Option func(*PublicSetup)

// WithMSMTasks 设置多标量乘法并行任务数（0 表示默认）
func WithMSMTasks(n int) Option {
	return func(s *PublicSetup) {
		s.msmConfig.NbTasks = n
	}
}

// NewPublicSetup 派生 size 个生成元与内积论证的附加生成元 U
func NewPublicSetup(size int, domainTag string, opts ...Option) (*PublicSetup, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size=%d", ErrInvalidSetup, size)
	}
	s := &PublicSetup{
		generators: make([]bls12381.G1Affine, size),
		domainTag:  domainTag,
	}
	for _, opt := range opts {
		opt(s)
	}

	dst := []byte(domainTag)
	workers := runtime.GOMAXPROCS(0)
	if workers > size {
		workers = size
	}
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	chunk := (size + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start, end := w*chunk, (w+1)*chunk
		if end > size {
			end = size
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			var msg [9]byte
			msg[0] = 'G'
			for i := start; i < end; i++ {
				binary.BigEndian.PutUint64(msg[1:], uint64(i))
				g, err := bls12381.HashToG1(msg[:], dst)
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
				s.generators[i] = g
			}
		}(start, end)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetup, firstErr)
	}

	u, err := bls12381.HashToG1([]byte("U"), dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSetup, err)
	}
	s.u = u
	s.fingerprint = s.computeFingerprint()
	return s, nil
}

// Size 生成元数量
func (s *PublicSetup) Size() int {
	return len(s.generators)
}

// DomainTag 派生标签
func (s *PublicSetup) DomainTag() string {
	return s.domainTag
}

// Fingerprint 公共参数的 SHA3-256 摘要（构造时计算）
func (s *PublicSetup) Fingerprint() []byte {
	return append([]byte{}, s.fingerprint...)
}

func (s *PublicSetup) computeFingerprint() []byte {
	h := sha3.New256()
	h.Write([]byte(s.domainTag))
	for i := range s.generators {
		b := s.generators[i].Bytes()
		h.Write(b[:])
	}
	b := s.u.Bytes()
	h.Write(b[:])
	return h.Sum(nil)
}

// Commit 承诺域元素向量
func (s *PublicSetup) Commit(values []fr.Element) (types.Commitment, error) {
	if len(values) > len(s.generators) {
		return types.Commitment{}, WrapSetupTooSmallError(len(values), len(s.generators))
	}
	p, err := s.msm(s.generators[:len(values)], values)
	if err != nil {
		return types.Commitment{}, err
	}
	return types.Commitment{Point: p, Length: uint64(len(values))}, nil
}

// CommitColumn 承诺一列（先做域编码）
func (s *PublicSetup) CommitColumn(col types.Column) (types.Commitment, error) {
	return s.Commit(scalar.FromColumn(col))
}

// Combine 计算 Σ coeffs_i·commitments_i
func (s *PublicSetup) Combine(commitments []types.Commitment, coeffs []fr.Element) (bls12381.G1Affine, error) {
	points := make([]bls12381.G1Affine, len(commitments))
	for i := range commitments {
		points[i] = commitments[i].Point
	}
	return s.msm(points, coeffs)
}

// msm 多标量乘法，空输入返回无穷远点
func (s *PublicSetup) msm(points []bls12381.G1Affine, scalars []fr.Element) (bls12381.G1Affine, error) {
	var out bls12381.G1Affine
	if len(points) != len(scalars) {
		return out, fmt.Errorf("msm: %d points, %d scalars", len(points), len(scalars))
	}
	// 无穷远点对结果没有贡献，直接剔除
	filteredPoints := make([]bls12381.G1Affine, 0, len(points))
	filteredScalars := make([]fr.Element, 0, len(scalars))
	for i := range points {
		if points[i].IsInfinity() || scalars[i].IsZero() {
			continue
		}
		filteredPoints = append(filteredPoints, points[i])
		filteredScalars = append(filteredScalars, scalars[i])
	}
	points, scalars = filteredPoints, filteredScalars
	if len(points) == 0 {
		// 零值 (0,0) 即无穷远点
		return out, nil
	}
	var acc bls12381.G1Jac
	if _, err := acc.MultiExp(points, scalars, s.msmConfig); err != nil {
		return out, fmt.Errorf("msm: %w", err)
	}
	out.FromJacobian(&acc)
	return out, nil
}
