package commitment

import (
	"errors"
	"fmt"
)

var (
	// ErrSetupTooSmall 向量长度超过生成元数量
	ErrSetupTooSmall = errors.New("public setup too small")
	// ErrInvalidSetup 公共参数生成失败
	ErrInvalidSetup = errors.New("invalid public setup")
	// ErrInnerProductRejected 内积论证验证失败
	ErrInnerProductRejected = errors.New("inner product argument rejected")
	// ErrMalformedProof 证明结构不合法（轮数、长度）
	ErrMalformedProof = errors.New("malformed inner product proof")
)

// WrapSetupTooSmallError 包装生成元不足错误
func WrapSetupTooSmallError(length, size int) error {
	return fmt.Errorf("%w: length=%d setup=%d", ErrSetupTooSmall, length, size)
}
