package proof

import (
	"context"
	"errors"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/google/uuid"
	"github.com/pbnjay/memory"

	proofconfig "github.com/weisyn/proofsql/internal/config/proof"
	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/internal/core/sumcheck"
	"github.com/weisyn/proofsql/pkg/interfaces/accessor"
	"github.com/weisyn/proofsql/pkg/interfaces/infrastructure/log"
)

// Service 查询证明服务
//
// 在 New/Verify 之外补充请求 ID、结构化日志、prometheus 指标与内存预估。
// 证明与验证本身是同步的纯计算，ctx 只在开始前检查。
type Service struct {
	setup  *commitment.PublicSetup
	config *proofconfig.Config
	logger log.Logger
}

// NewService 创建服务
func NewService(setup *commitment.PublicSetup, config *proofconfig.Config, logger log.Logger) *Service {
	if config == nil {
		config = proofconfig.New(nil)
	}
	return &Service{setup: setup, config: config, logger: logger}
}

// Setup 公共参数
func (s *Service) Setup() *commitment.PublicSetup {
	return s.setup
}

// CountAlias 配置的分组计数列别名
func (s *Service) CountAlias() string {
	return s.config.GetCountAlias()
}

func (s *Service) options() []Option {
	return []Option{WithSumcheckOptions(sumcheck.Options{
		ParallelThreshold: s.config.GetParallelThreshold(),
		MaxWorkers:        s.config.GetMaxWorkers(),
	})}
}

func (s *Service) requestLogger(op string) (log.Logger, string) {
	id := uuid.New().String()
	if s.logger == nil {
		return nil, id
	}
	return s.logger.With("request_id", id, "op", op), id
}

// estimateWorkingSet 证明方工作集的粗略估计（字节）
func estimateWorkingSet(rows uint64, columns int) uint64 {
	size := uint64(scalar.NextPowerOfTwo(int(rows)))
	// 输入列、ρ、行号，以及 sumcheck 副本与见证列的余量
	return size * uint64(columns+2) * fr.Bytes * 4
}

// Prove 生成证明
func (s *Service) Prove(ctx context.Context, plan Plan, acc accessor.Accessor) (*VerifiableQueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger, _ := s.requestLogger("prove")

	if rows, err := acc.GetLength(plan.Table()); err == nil {
		estimate := estimateWorkingSet(rows, len(plan.Columns()))
		if total := memory.TotalMemory(); total > 0 && estimate > total/2 && logger != nil {
			logger.Warnf("证明工作集预估 %d 字节，超过系统内存的一半（%d 字节）", estimate, total)
		}
	}

	start := time.Now()
	result, err := New(plan, acc, s.setup, s.options()...)
	elapsed := time.Since(start)
	if err != nil {
		s.observeProve(outcomeError, elapsed, 0)
		if logger != nil {
			logger.Errorf("生成查询证明失败: plan=%s err=%v", plan.Describe(), err)
		}
		return nil, err
	}

	var size int
	if s.config.IsMetricsEnabled() || logger != nil {
		if encoded, err := Marshal(result); err == nil {
			size = len(encoded)
			if logger != nil {
				logger.Infof("查询证明已生成: table=%s rows=%d size=%d fingerprint=%s elapsed=%s",
					plan.Table(), result.Table.Len(), size, Fingerprint(encoded), elapsed)
			}
		}
	}
	s.observeProve(outcomeOK, elapsed, size)
	return result, nil
}

// Verify 验证证明
func (s *Service) Verify(ctx context.Context, plan Plan, acc accessor.CommitmentAccessor, result *VerifiableQueryResult) (*QueryData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger, _ := s.requestLogger("verify")

	start := time.Now()
	data, err := result.Verify(plan, acc, s.setup)
	elapsed := time.Since(start)

	outcome := outcomeOK
	switch {
	case errors.Is(err, ErrVerificationFailed):
		outcome = outcomeRejected
	case err != nil:
		outcome = outcomeError
	}
	if s.config.IsMetricsEnabled() {
		verifyTotal.WithLabelValues(outcome).Inc()
		verifyDurationSeconds.Observe(elapsed.Seconds())
	}
	if logger != nil {
		if err != nil {
			var verr *VerificationError
			if errors.As(err, &verr) {
				logger.Warnf("查询证明被拒绝: table=%s stage=%s cause=%v", plan.Table(), verr.Stage, verr.Cause)
			} else {
				logger.Errorf("验证查询证明失败: table=%s err=%v", plan.Table(), err)
			}
		} else {
			logger.Infof("查询证明验证通过: table=%s rows=%d elapsed=%s", plan.Table(), data.Table.Len(), elapsed)
		}
	}
	return data, err
}

func (s *Service) observeProve(outcome string, elapsed time.Duration, size int) {
	if !s.config.IsMetricsEnabled() {
		return
	}
	proveTotal.WithLabelValues(outcome).Inc()
	proveDurationSeconds.Observe(elapsed.Seconds())
	if size > 0 {
		proofSizeBytes.Observe(float64(size))
	}
}
