package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"alert-monitor/internal/model"
	"alert-monitor/internal/service"
)

// Command flags
var (
	watchExportDir     string        // Export a snapshot here on exit
	watchStatsInterval time.Duration // Print a stats line at this interval (0 = off)
	watchQuiet         bool          // Suppress alert notifications
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "实时监控告警推送",
	Long: `打开一个监控会话：建立推送连接（WebSocket 或 SSE），实时显示新告警通知和连接状态变化，
断线后按固定间隔自动重连，并按配置的间隔通过 REST 刷新告警列表。
按 Ctrl+C 退出；指定 --export-dir 时在退出前导出一份快照。

示例:
  # 使用默认配置开始监控
  alertmon watch -c config.yaml

  # 每 30 秒打印一次统计，退出时导出快照
  alertmon watch --stats-interval 30s --export-dir ./reports`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchExportDir, "export-dir", "", "退出时导出快照的目录")
	watchCmd.Flags().DurationVar(&watchStatsInterval, "stats-interval", 0, "统计信息打印间隔（0 表示不打印）")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "不显示新告警通知")
}

func runWatch(cmd *cobra.Command, args []string) {
	a := loadApp()
	defer a.Close()

	printBanner()
	fmt.Printf("📡 推送通道: %s %s\n", a.cfg.Stream.Transport, a.cfg.Stream.URL)
	fmt.Printf("🔧 操作通道: %s\n", a.cfg.Mutation.Channel)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	var notifier service.Notifier = service.NotifierFunc(func(model.Alert) {})
	if !watchQuiet {
		notifier = service.NewConsoleNotifier(os.Stdout, a.catalog, a.timezone)
	}

	sess := a.newSession(
		service.WithNotifier(notifier),
		service.WithStatusListener(func(status model.ConnectionStatus) {
			fmt.Printf("[%s] %s\n", time.Now().In(a.timezone).Format("15:04:05"), connectionText(status))
		}),
	)
	defer sess.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if watchStatsInterval > 0 {
		go printStatsLoop(ctx, sess, watchStatsInterval)
	}

	if err := sess.Run(ctx); err != nil {
		a.logger.Error().Err(err).Msg("session failed")
	}
	sess.Close()

	snap := sess.Snapshot()
	fmt.Println()
	printStatistics(snap.Statistics)

	if watchExportDir != "" {
		exportSnapshot(a, snap, watchExportDir, nil)
	}
}

// printStatsLoop prints a one-line summary at every tick until ctx is done.
func printStatsLoop(ctx context.Context, sess *service.Session, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := sess.Snapshot()
			st := snap.Statistics
			fmt.Printf("📊 %s | 未解决 %d（严重 %d / 错误 %d / 警告 %d）| 插件 %d（异常 %d）\n",
				connectionText(snap.Status), st.Active,
				st.BySeverity[model.SeverityCritical], st.BySeverity[model.SeverityError], st.BySeverity[model.SeverityWarning],
				snap.PluginSummary.Total, snap.PluginSummary.Warning)
		}
	}
}

// printBanner prints the application banner.
func printBanner() {
	fmt.Printf("🔔 实时告警监控 %s\n", Version)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
}
