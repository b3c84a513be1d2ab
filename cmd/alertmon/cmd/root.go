// Package cmd provides CLI commands for the alert monitor.
package cmd

import (
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information, injected at build time via -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Global flags
var (
	cfgFile  string // Config file path
	logLevel string // Log level
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "alertmon",
	Short: "实时告警监控客户端 - 告警推送与插件指标监控",
	Long: `实时告警监控客户端通过 WebSocket 或 SSE 接收服务端推送的告警和插件指标，
并通过 REST 接口执行告警解决、插件启停等操作。

数据流: 服务端推送 → 帧分类 → 告警/指标存储 → 控制台 / Excel / HTML 快照

主要功能:
  - 维持推送连接，断线后按固定间隔自动重连
  - 合并服务端推送与本地乐观更新（最后写入生效）
  - 单个/批量/全部解决告警，启停插件
  - 保留每个插件最近的指标历史
  - 导出 Excel 和 HTML 格式的监控快照`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (debug, info, warn, error)，覆盖配置文件")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// GetConfigFile returns the config file path from command line flag.
func GetConfigFile() string {
	return cfgFile
}

// GetLogLevel returns the log level from command line flag, or "" if unset.
func GetLogLevel() string {
	return logLevel
}

// GetVersionInfo returns formatted version information.
func GetVersionInfo() string {
	return Version + "\n" +
		"Build Time: " + BuildTime + "\n" +
		"Git Commit: " + GitCommit + "\n" +
		"Go Version: " + runtime.Version() + "\n" +
		"OS/Arch: " + runtime.GOOS + "/" + runtime.GOARCH
}
