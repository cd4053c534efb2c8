// Package version 构建版本与协议信息
//
// Version、Commit、BuildTime 通过 ldflags 注入：
//
//	go build -ldflags "-X github.com/weisyn/proofsql/internal/app/version.Version=v0.2.0"
package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/weisyn/proofsql/internal/core/proof"
)

var (
	Version   = "v0.1.0"
	Commit    = "unknown"
	BuildTime = "unknown" // RFC3339
)

// Info 版本信息
//
// Protocol 决定证明能否互通：协议标签不同的证明方与验证方无法互相验证。
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	Protocol  string `json:"protocol"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get 当前二进制的版本信息
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		Protocol:  proof.ProtocolTag,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String 多行文本（version 命令输出）
func (i Info) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "proofsql %s", i.Version)
	if i.Commit != "unknown" && i.Commit != "" {
		fmt.Fprintf(&sb, " (%s)", i.Commit)
	}
	fmt.Fprintf(&sb, "\n协议: %s", i.Protocol)
	if i.BuildTime != "unknown" {
		built := i.BuildTime
		if t, err := time.Parse(time.RFC3339, i.BuildTime); err == nil {
			built = t.UTC().Format("2006-01-02 15:04:05 MST")
		}
		fmt.Fprintf(&sb, "\n构建时间: %s", built)
	}
	fmt.Fprintf(&sb, "\nGo版本: %s\n平台: %s", i.GoVersion, i.Platform)
	return sb.String()
}
