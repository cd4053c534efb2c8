package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weisyn/proofsql/internal/app/version"
)

var versionJSON bool

// versionCmd 打印版本信息
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "打印版本与协议信息",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if !versionJSON {
			fmt.Println(info.String())
			return nil
		}
		out, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "以 JSON 输出")
}
