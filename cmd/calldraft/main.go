// calldraft 住院医值班选班助手
// 主程序入口

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/calldraft/calldraft/internal/cli"
	"github.com/calldraft/calldraft/internal/server"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	info := server.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}
	if err := cli.Execute(context.Background(), info, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
