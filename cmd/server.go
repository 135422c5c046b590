package cmd

import (
	"Spitbox/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 Spitbox 服务器",
	Long:  `启动 Spitbox 的 HTTP 服务器，提供认证、beat、评论、点赞和管理 API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	return server.Start(cfg)
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
