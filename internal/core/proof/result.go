package proof

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/weisyn/proofsql/internal/core/commitment"
	"github.com/weisyn/proofsql/internal/core/scalar"
	"github.com/weisyn/proofsql/internal/core/sumcheck"
	"github.com/weisyn/proofsql/internal/core/transcript"
	"github.com/weisyn/proofsql/pkg/types"
)

// ProtocolTag 转录器协议标签
const ProtocolTag = "PROOFSQL_QUERY_V1"

// QueryProof 一次查询的完整证明
type QueryProof struct {
	Public      []uint64                       // 计划公开数据
	Commitments []types.Commitment             // 中间见证列承诺（按生成顺序）
	Rounds      [][]fr.Element                 // 批量 sumcheck 的轮多项式
	Evaluations []fr.Element                   // 输入列与见证列在 sumcheck 点处的取值
	Opening     *commitment.InnerProductProof // 批量打开
}

// VerifiableQueryResult 声明的结果表与证明
type VerifiableQueryResult struct {
	Table *types.Table
	Proof *QueryProof
}

// QueryData 验证通过后的结果
type QueryData struct {
	Table *types.Table
	// VerificationHash 验证结束时的转录器状态，同一查询、数据与结果下稳定
	VerificationHash []byte
}

// Option 证明与验证选项
type Option func(*settings)

type settings struct {
	sumcheck sumcheck.Options
}

// WithSumcheckOptions 设置 sumcheck 并行参数
func WithSumcheckOptions(opts sumcheck.Options) Option {
	return func(s *settings) {
		s.sumcheck = opts
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{sumcheck: sumcheck.Options{ParallelThreshold: 4096}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// bindStatement 按固定顺序写入：公共参数、计划、表、输入承诺、结果表、公开数据
func bindStatement(tr *transcript.Transcript, setup *commitment.PublicSetup, plan Plan, rows uint64, inputs []types.Commitment, result *types.Table, public []uint64) {
	tr.Append("setup", setup.Fingerprint())
	tr.Append("plan", []byte(plan.Describe()))
	tr.Append("table", []byte(plan.Table().String()))
	tr.AppendUint64("rows", rows)
	tr.AppendCommitments("inputs", inputs...)

	tr.AppendUint64("result.rows", uint64(result.Len()))
	for _, f := range result.Fields() {
		tr.Append("result.name", []byte(f.Name))
		tr.Append("result.type", []byte(f.Column.Type.String()))
		tr.AppendScalars("result.values", scalar.FromColumn(f.Column)...)
	}

	tr.AppendUint64("public.len", uint64(len(public)))
	for _, v := range public {
		tr.AppendUint64("public", v)
	}
}

// schemaMatches 结果表列名与类型与计划一致
func schemaMatches(result *types.Table, schema []types.ColumnField) bool {
	got := result.Schema()
	if len(got) != len(schema) {
		return false
	}
	for i := range got {
		if got[i] != schema[i] {
			return false
		}
	}
	return true
}

// dimensions 填充行数与变量数
func dimensions(rows uint64) (int, int) {
	size := scalar.NextPowerOfTwo(int(rows))
	return size, scalar.Log2(size)
}
