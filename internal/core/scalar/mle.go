package scalar

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// NextPowerOfTwo 不小于 n 的最小 2 的幂（n<=1 时为 1）
func NextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// Log2 2 的幂的对数
func Log2(n int) int {
	k := 0
	for (1 << k) < n {
		k++
	}
	return k
}

// NumVars 长度为 n 的列在超立方体上的变量数
func NumVars(n int) int {
	return Log2(NextPowerOfTwo(n))
}

// Powers 返回 1, x, x^2, ..., x^{n-1}
func Powers(x fr.Element, n int) []fr.Element {
	out := make([]fr.Element, n)
	if n == 0 {
		return out
	}
	out[0].SetOne()
	for i := 1; i < n; i++ {
		out[i].Mul(&out[i-1], &x)
	}
	return out
}

// InnerProduct 计算 Σ a_i·b_i（按较短的长度截断）
func InnerProduct(a, b []fr.Element) fr.Element {
	var acc, t fr.Element
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		t.Mul(&a[i], &b[i])
		acc.Add(&acc, &t)
	}
	return acc
}

// Sum 计算 Σ a_i
func Sum(a []fr.Element) fr.Element {
	var acc fr.Element
	for i := range a {
		acc.Add(&acc, &a[i])
	}
	return acc
}

// EqTable 返回 eq(r, i) 对 i ∈ [0, 2^len(r)) 的取值
func EqTable(r []fr.Element) []fr.Element {
	table := make([]fr.Element, 1, 1<<len(r))
	table[0].SetOne()
	for k := range r {
		half := len(table)
		table = append(table, make([]fr.Element, half)...)
		for idx := 0; idx < half; idx++ {
			hi := table[idx]
			hi.Mul(&hi, &r[k])
			table[idx].Sub(&table[idx], &hi)
			table[idx+half] = hi
		}
	}
	return table
}

// EvalMLE 计算 values（零填充到 2^len(r)）的多线性扩展在 r 处的取值
func EvalMLE(values []fr.Element, r []fr.Element) fr.Element {
	size := 1 << len(r)
	cur := make([]fr.Element, size)
	copy(cur, values)
	for k := range r {
		half := len(cur) / 2
		next := make([]fr.Element, half)
		for i := 0; i < half; i++ {
			// v' = v[2i] + r·(v[2i+1] - v[2i])
			next[i].Sub(&cur[2*i+1], &cur[2*i])
			next[i].Mul(&next[i], &r[k])
			next[i].Add(&next[i], &cur[2*i])
		}
		cur = next
	}
	return cur[0]
}

// RowIndicatorEval 行存在指示列 ρ（i<n 为 1）的多线性扩展在 r 处的取值，O(len(r))
func RowIndicatorEval(n int, r []fr.Element) fr.Element {
	var one fr.Element
	one.SetOne()
	return rowIndicator(n, r, len(r), one)
}

func rowIndicator(n int, r []fr.Element, k int, one fr.Element) fr.Element {
	var zero fr.Element
	if n <= 0 {
		return zero
	}
	if n >= 1<<k {
		return one
	}
	top := r[k-1]
	var notTop fr.Element
	notTop.Sub(&one, &top)

	half := 1 << (k - 1)
	if n <= half {
		sub := rowIndicator(n, r, k-1, one)
		sub.Mul(&sub, &notTop)
		return sub
	}
	sub := rowIndicator(n-half, r, k-1, one)
	sub.Mul(&sub, &top)
	sub.Add(&sub, &notTop)
	return sub
}

// RowIndexEval 行号列（第 i 行取 i）在 r 处的多线性扩展：Σ 2^k·r_k
func RowIndexEval(r []fr.Element) fr.Element {
	var acc, pow, t fr.Element
	pow.SetOne()
	for k := range r {
		t.Mul(&pow, &r[k])
		acc.Add(&acc, &t)
		pow.Double(&pow)
	}
	return acc
}

// RowIndicator 长度为 size 的 ρ 向量
func RowIndicator(n, size int) []fr.Element {
	out := make([]fr.Element, size)
	for i := 0; i < n && i < size; i++ {
		out[i].SetOne()
	}
	return out
}

// RowIndex 长度为 size 的行号向量
func RowIndex(size int) []fr.Element {
	out := make([]fr.Element, size)
	for i := range out {
		out[i].SetUint64(uint64(i))
	}
	return out
}

// EqEval eq(a, b) = Π_k (a_k·b_k + (1-a_k)(1-b_k))，a、b 长度相同
func EqEval(a, b []fr.Element) fr.Element {
	var acc, one fr.Element
	acc.SetOne()
	one.SetOne()
	for k := range a {
		var ab, na, nb, t fr.Element
		ab.Mul(&a[k], &b[k])
		na.Sub(&one, &a[k])
		nb.Sub(&one, &b[k])
		t.Mul(&na, &nb)
		t.Add(&t, &ab)
		acc.Mul(&acc, &t)
	}
	return acc
}
