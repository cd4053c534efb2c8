package proof

import (
	"fmt"

	"go.uber.org/fx"

	proofconfig "github.com/weisyn/proofsql/internal/config/proof"
	"github.com/weisyn/proofsql/internal/core/commitment"
	logmodule "github.com/weisyn/proofsql/internal/core/infrastructure/log"
	"github.com/weisyn/proofsql/pkg/interfaces/infrastructure/log"
)

// ModuleParams 证明模块依赖
type ModuleParams struct {
	fx.In

	Options *proofconfig.ProofOptions
	Logger  log.Logger `optional:"true"`
}

// ModuleOutput 证明模块输出
type ModuleOutput struct {
	fx.Out

	Setup   *commitment.PublicSetup
	Service *Service
}

// Module 返回证明模块
func Module() fx.Option {
	return fx.Module("proof",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 派生公共参数并创建证明服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	cfg := proofconfig.NewFromOptions(params.Options)
	setup, err := commitment.NewPublicSetup(cfg.GetSetupSize(), cfg.GetDomainTag(), commitment.WithMSMTasks(cfg.GetMSMTasks()))
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("派生公共参数失败: %w", err)
	}
	logger := logmodule.NewModuleLogger(params.Logger, "proof")
	if logger != nil {
		logger.Infof("公共参数已就绪: size=%d tag=%s", setup.Size(), setup.DomainTag())
	}
	return ModuleOutput{
		Setup:   setup,
		Service: NewService(setup, cfg, logger),
	}, nil
}
