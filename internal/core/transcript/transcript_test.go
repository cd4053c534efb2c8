package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/proofsql/internal/core/scalar"
)

// TestDeterministic 测试相同输入得到相同挑战
func TestDeterministic(t *testing.T) {
	build := func() *Transcript {
		tr := New("test")
		tr.AppendUint64("len", 5)
		tr.AppendScalars("vals", scalar.FromInt64(1), scalar.FromInt64(2))
		return tr
	}
	a, b := build(), build()
	ca, cb := a.Challenge("alpha"), b.Challenge("alpha")
	assert.True(t, ca.Equal(&cb))

	da, db := a.Challenges("r", 3), b.Challenges("r", 3)
	for i := range da {
		assert.True(t, da[i].Equal(&db[i]))
	}
	assert.False(t, da[0].Equal(&da[1]), "连续挑战应不同")
}

// TestSensitivity 测试任何差异都会改变挑战
func TestSensitivity(t *testing.T) {
	base := New("test")
	base.AppendUint64("len", 5)
	c0 := base.Challenge("alpha")

	tests := []struct {
		name  string
		build func() *Transcript
	}{
		{"不同协议标签", func() *Transcript {
			tr := New("other")
			tr.AppendUint64("len", 5)
			return tr
		}},
		{"不同数据", func() *Transcript {
			tr := New("test")
			tr.AppendUint64("len", 6)
			return tr
		}},
		{"不同标签", func() *Transcript {
			tr := New("test")
			tr.AppendUint64("length", 5)
			return tr
		}},
		{"额外数据", func() *Transcript {
			tr := New("test")
			tr.AppendUint64("len", 5)
			tr.Append("extra", nil)
			return tr
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.build().Challenge("alpha")
			assert.False(t, c.Equal(&c0))
		})
	}

	// 标签/数据的边界不可混淆
	x := New("test")
	x.Append("ab", []byte("c"))
	y := New("test")
	y.Append("a", []byte("bc"))
	cx, cy := x.Challenge("z"), y.Challenge("z")
	assert.False(t, cx.Equal(&cy))
}
