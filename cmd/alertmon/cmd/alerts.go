package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"alert-monitor/internal/model"
	"alert-monitor/internal/service"
)

// Command flags
var (
	alertsAll      bool   // Include resolved alerts
	alertsSeverity string // Minimum severity filter
	alertsLimit    int    // Override session.alert_limit
	statsServer    bool   // Fetch statistics computed by the server
)

var alertHeaders = []string{"ID", "级别", "类型", "标题", "来源", "当前值 / 阈值", "时间", "状态"}

// alertsCmd groups the alert one-shot commands.
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "查询和解决告警",
	Long: `通过 REST 接口查询告警列表和统计，或解决告警。

示例:
  # 列出未解决的告警
  alertmon alerts list -c config.yaml

  # 列出全部告警（含已解决），仅显示错误及以上
  alertmon alerts list --all --severity error

  # 解决单个告警
  alertmon alerts resolve alert-123

  # 批量解决
  alertmon alerts bulk-resolve alert-1 alert-2 alert-3

  # 解决全部未解决告警
  alertmon alerts resolve-all`,
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出告警",
	Args:  cobra.NoArgs,
	Run:   runAlertsList,
}

var alertsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "显示告警统计",
	Long:  "显示告警统计。默认基于拉取到的告警在本地计算，--server 使用服务端统计接口。",
	Args:  cobra.NoArgs,
	Run:   runAlertsStats,
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "解决单个告警",
	Args:  cobra.ExactArgs(1),
	Run:   runAlertsResolve,
}

var alertsBulkResolveCmd = &cobra.Command{
	Use:   "bulk-resolve <alert-id>...",
	Short: "批量解决告警",
	Long:  "批量解决指定的告警。已解决或未知的 ID 会被忽略；没有需要解决的告警时不会发送请求。",
	Args:  cobra.MinimumNArgs(1),
	Run:   runAlertsBulkResolve,
}

var alertsResolveAllCmd = &cobra.Command{
	Use:   "resolve-all",
	Short: "解决全部未解决告警",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runBulk(nil)
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd, alertsStatsCmd, alertsResolveCmd, alertsBulkResolveCmd, alertsResolveAllCmd)

	alertsCmd.PersistentFlags().IntVar(&alertsLimit, "limit", 0, "拉取告警数量上限（默认使用 session.alert_limit）")
	alertsListCmd.Flags().BoolVarP(&alertsAll, "all", "a", false, "包含已解决的告警")
	alertsListCmd.Flags().StringVarP(&alertsSeverity, "severity", "s", "", "最低严重级别 (info, warning, error, critical)")
	alertsStatsCmd.Flags().BoolVar(&statsServer, "server", false, "使用服务端统计接口")
}

// loadAlertsApp loads the app and applies the --limit override.
func loadAlertsApp() *app {
	a := loadApp()
	if alertsLimit > 0 {
		a.cfg.Session.AlertLimit = alertsLimit
	}
	return a
}

func runAlertsList(cmd *cobra.Command, args []string) {
	a := loadAlertsApp()
	defer a.Close()

	minSeverity, err := parseSeverity(alertsSeverity)
	if err != nil {
		a.fail("%v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	sess := a.newOneShotSession()
	defer sess.Close()
	if err := sess.Coordinator().Refresh(ctx); err != nil {
		a.fail("获取告警失败: %v", err)
	}

	snap := sess.Snapshot()
	alerts := filterAlerts(snap.Alerts, minSeverity, alertsAll)
	if err := renderTable(alertHeaders, alertRows(alerts, a.catalog, a.timezone)); err != nil {
		a.fail("%v", err)
	}
	fmt.Printf("\n共 %d 条（未解决 %d / 已解决 %d）\n", len(alerts), snap.Statistics.Active, snap.Statistics.Resolved)
}

func runAlertsStats(cmd *cobra.Command, args []string) {
	a := loadAlertsApp()
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	var stats model.AlertStatistics
	if statsServer {
		s, err := a.client.GetStatistics(ctx)
		if err != nil {
			a.fail("获取统计失败: %v", err)
		}
		stats = *s
	} else {
		sess := a.newOneShotSession()
		defer sess.Close()
		if err := sess.Coordinator().Refresh(ctx); err != nil {
			a.fail("获取告警失败: %v", err)
		}
		stats = sess.Snapshot().Statistics
	}

	printStatistics(stats)
}

// printStatistics prints an AlertStatistics block.
func printStatistics(stats model.AlertStatistics) {
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("   告警总数: %d\n", stats.Total)
	fmt.Printf("   未解决:   %d\n", stats.Active)
	fmt.Printf("   已解决:   %d\n", stats.Resolved)
	fmt.Printf("   近 24 小时: %d\n", stats.Last24Hours)
	fmt.Println()
	for i := len(model.AllSeverities) - 1; i >= 0; i-- {
		sev := model.AllSeverities[i]
		fmt.Printf("   %s: %d\n", severityText(sev), stats.BySeverity[sev])
	}
	if len(stats.ByType) > 0 {
		fmt.Printf("   按类型: %s\n", sortedCounts(stats.ByType))
	}
}

func runAlertsResolve(cmd *cobra.Command, args []string) {
	a := loadAlertsApp()
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	sess := a.newOneShotSession()
	defer sess.Close()

	alertID := args[0]
	if err := sess.Coordinator().Resolve(ctx, alertID); err != nil {
		a.fail("解决告警 %s 失败: %v", alertID, err)
	}
	fmt.Printf("✅ 告警已解决: %s\n", alertID)
}

func runAlertsBulkResolve(cmd *cobra.Command, args []string) {
	runBulk(args)
}

// runBulk resolves ids, or every active alert when ids is nil.
func runBulk(ids []string) {
	a := loadAlertsApp()
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	sess := a.newOneShotSession()
	defer sess.Close()

	// Bulk resolution only considers alerts known to be unresolved
	if err := sess.Coordinator().Refresh(ctx); err != nil {
		a.fail("获取告警失败: %v", err)
	}

	var (
		res service.BulkResult
		err error
	)
	if ids == nil {
		res, err = sess.Coordinator().ResolveAllActive(ctx)
	} else {
		res, err = sess.Coordinator().BulkResolve(ctx, ids)
	}
	if err != nil {
		a.fail("批量解决失败: %v", err)
	}

	if res.NothingToResolve {
		fmt.Println("ℹ️  没有需要解决的告警")
		return
	}
	fmt.Printf("✅ 已解决 %d / %d 条告警\n", res.Resolved, res.Requested)
}
