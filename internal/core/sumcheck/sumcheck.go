// Package sumcheck 实现多线性扩展上的 sumcheck 协议
//
// 🎯 **证明目标**
//
//	Σ_{x∈{0,1}^ν} Σ_t coef_t · [eq(r,x)] · Π_f T_f(x) = claim
//
// 每个表 T_f 以 2^ν 个取值给出，按多线性扩展理解。第 k 轮绑定行号的第 k 位
// （最低位先绑定），轮多项式以 0..D 上的取值发送，D 为各项的最大次数。
//
// eq 因子由调用方提供的 eq(r,·) 表承担，用于把逐行为零的约束
// 变成一次求和检查。
package sumcheck

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

var (
	// ErrRoundMismatch 轮多项式与上一轮声明不符
	ErrRoundMismatch = errors.New("sumcheck round mismatch")
	// ErrMalformedRounds 轮数或轮多项式长度不对
	ErrMalformedRounds = errors.New("malformed sumcheck rounds")
	// ErrInvalidInput 证明输入不一致
	ErrInvalidInput = errors.New("invalid sumcheck input")
)

// Term 一个乘积项
type Term struct {
	Coef    fr.Element
	Factors []int // 表下标
	Eq      bool  // 是否乘以 eq(r,x)
}

// Degree 各项的最大次数（至少为 1）
func Degree(terms []Term) int {
	d := 1
	for _, t := range terms {
		n := len(t.Factors)
		if t.Eq {
			n++
		}
		if n > d {
			d = n
		}
	}
	return d
}

// Options 并行参数
type Options struct {
	// ParallelThreshold 每轮待处理的行对数达到该值才并行
	ParallelThreshold int
	// MaxWorkers 最大并行度，<=0 表示 GOMAXPROCS
	MaxWorkers int
}

// interpolate 给定 p(0..D) 的取值，计算 p(x)
func interpolate(values []fr.Element, x fr.Element) fr.Element {
	d := len(values)
	var result fr.Element
	for i := 0; i < d; i++ {
		var num, den fr.Element
		num.SetOne()
		den.SetOne()
		for j := 0; j < d; j++ {
			if j == i {
				continue
			}
			var xj, ij fr.Element
			xj.SetUint64(uint64(j))
			xj.Sub(&x, &xj)
			num.Mul(&num, &xj)

			ij.SetInt64(int64(i - j))
			den.Mul(&den, &ij)
		}
		den.Inverse(&den)
		num.Mul(&num, &den)
		num.Mul(&num, &values[i])
		result.Add(&result, &num)
	}
	return result
}

func validateTerms(terms []Term, numTables int) error {
	for i, t := range terms {
		for _, f := range t.Factors {
			if f < 0 || f >= numTables {
				return fmt.Errorf("%w: term=%d factor=%d tables=%d", ErrInvalidInput, i, f, numTables)
			}
		}
	}
	return nil
}
