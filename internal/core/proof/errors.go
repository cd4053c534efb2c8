package proof

import (
	"errors"
	"fmt"
)

var (
	// ErrVerificationFailed 验证拒绝（对调用方只有接受/拒绝两种结果）
	ErrVerificationFailed = errors.New("query proof verification failed")
	// ErrProverInvariant 证明方内部不变量被破坏（通常是访问器数据不一致）
	ErrProverInvariant = errors.New("prover invariant violated")
	// ErrMalformedProof 证明结构不完整
	ErrMalformedProof = errors.New("malformed query proof")
	// ErrUnknownInput 引用了计划未声明的输入列
	ErrUnknownInput = errors.New("column is not a plan input")
)

// 验证阶段
const (
	StageStatement   = "statement"   // 输入承诺与长度
	StageResult      = "result"      // 结果表结构
	StagePublic      = "public"      // 计划公开数据的明文检查
	StageArithmetize = "arithmetize" // 中间承诺
	StageSumcheck    = "sumcheck"    // 批量 sumcheck
	StageEvaluation  = "evaluation"  // 最终取值
	StageOpening     = "opening"     // 批量打开（内积论证）
)

// VerificationError 带阶段信息的验证拒绝
type VerificationError struct {
	Stage string
	Cause error
}

// Error 实现 error
func (e *VerificationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: stage=%s", ErrVerificationFailed, e.Stage)
	}
	return fmt.Sprintf("%s: stage=%s: %v", ErrVerificationFailed, e.Stage, e.Cause)
}

// Unwrap 同时匹配 ErrVerificationFailed 与具体原因
func (e *VerificationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrVerificationFailed}
	}
	return []error{ErrVerificationFailed, e.Cause}
}

func reject(stage string, cause error) error {
	return &VerificationError{Stage: stage, Cause: cause}
}

// WrapProverInvariantError 包装证明方不变量错误
func WrapProverInvariantError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrProverInvariant, fmt.Sprintf(format, args...))
}
