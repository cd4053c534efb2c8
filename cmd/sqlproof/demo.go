package main

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/proofsql/internal/app"
)

var demoFlags struct {
	Store   string
	HexHash bool
}

// demoCmd 证明并验证演示查询
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "证明并验证内置演示查询",
	Long: `写入演示表，逐个执行演示查询：证明、编码、解码、验证，并打印验证通过的结果表。

存储:
  memory   内存访问器（默认）
  badger   badger 持久化访问器，路径取自配置 storage.badger.path`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Stop()

		results, err := a.RunDemo(cmd.Context(), demoFlags.Store)
		if err != nil {
			return err
		}
		for _, r := range results {
			printResult(r)
		}
		pterm.Success.Printfln("%d 个查询全部验证通过", len(results))
		return nil
	},
}

func init() {
	demoCmd.Flags().StringVar(&demoFlags.Store, "store", app.StoreMemory, "存储类型: memory|badger")
	demoCmd.Flags().BoolVar(&demoFlags.HexHash, "hex", false, "以十六进制打印验证哈希 (默认 base58)")
}

func printResult(r app.DemoResult) {
	pterm.DefaultSection.Println(fmt.Sprintf("场景 %s", r.Scenario.Name))
	pterm.Println(r.Scenario.Description)

	if r.Table.NumColumns() > 0 {
		data := [][]string{r.Table.Names()}
		for i := 0; i < r.Table.Len(); i++ {
			data = append(data, r.Table.Row(i))
		}
		if err := pterm.DefaultTable.WithHasHeader(true).WithData(data).Render(); err != nil {
			pterm.Warning.Println(err.Error())
		}
	}

	pterm.DefaultTable.WithHasHeader(false).WithData([][]string{
		{"行数", fmt.Sprint(r.Table.Len())},
		{"验证哈希", formatHash(r.Hash)},
		{"证明大小", fmt.Sprintf("%d 字节", r.ProofBytes)},
		{"证明指纹", r.Fingerprint},
		{"证明耗时", r.Prove.String()},
		{"验证耗时", r.Verify.String()},
	}).Render()
}

func formatHash(h []byte) string {
	if demoFlags.HexHash {
		return hex.EncodeToString(h)
	}
	return base58.Encode(h)
}

