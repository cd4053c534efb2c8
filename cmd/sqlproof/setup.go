package main

import (
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// setupCmd 打印公共参数摘要
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "打印公共参数摘要",
	Long:  "按配置派生公共参数（生成元），打印规模、域标签与指纹。证明方与验证方的指纹必须一致。",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Stop()

		setup := a.Service.Setup()
		return pterm.DefaultTable.WithHasHeader(false).WithData([][]string{
			{"规模", fmt.Sprint(setup.Size())},
			{"域标签", setup.DomainTag()},
			{"指纹", base58.Encode(setup.Fingerprint())},
			{"计数别名", a.Service.CountAlias()},
		}).Render()
	},
}
