// Command admin 对持久化的简历文档做离线维护：查看、导入导出、重置与批量调整。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Resume builder maintenance tool",
	Long:          "admin reads the same environment as the api and edits the persisted resume document directly. Stop the api first: it keeps the document in memory and will overwrite offline edits.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
