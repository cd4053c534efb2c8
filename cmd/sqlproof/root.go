package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/weisyn/proofsql/internal/app"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigFile string // 配置文件路径
	NoColor    bool   // 关闭彩色输出
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "sqlproof",
	Short: "可验证 SQL 查询工具",
	Long: `sqlproof - 基于 BLS12-381 承诺与 sumcheck 的可验证 SQL 查询

证明方执行查询并生成证明，验证方只持有列承诺即可确认结果：
  sqlproof demo             # 证明并验证内置演示查询
  sqlproof setup            # 打印公共参数摘要
  sqlproof version          # 打印版本信息`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalFlags.NoColor || !term.IsTerminal(int(os.Stdout.Fd())) {
			pterm.DisableStyling()
		}
		return nil
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "JSON 配置文件路径 (默认使用内置默认值)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.NoColor, "no-color", false, "关闭彩色输出")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(versionCmd)
}

// newApp 按全局标志创建应用
func newApp() (*app.App, error) {
	var opts []app.Option
	if globalFlags.ConfigFile != "" {
		opts = append(opts, app.WithConfigFile(globalFlags.ConfigFile))
	}
	return app.New(opts...)
}
