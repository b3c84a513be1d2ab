package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"alert-monitor/internal/service"
)

var pluginHeaders = []string{"ID", "名称", "状态", "CPU", "内存", "响应时间", "错误率"}

// pluginsCmd groups the plugin commands.
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "查看和启停插件",
	Long: `通过 REST 接口查看插件状态和最新指标，或切换插件的启停状态。

示例:
  # 列出插件
  alertmon plugins list

  # 启用已停用的插件 / 停用运行中的插件
  alertmon plugins toggle payments`,
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出插件及最新指标",
	Args:  cobra.NoArgs,
	Run:   runPluginsList,
}

var pluginsToggleCmd = &cobra.Command{
	Use:   "toggle <plugin-id>",
	Short: "切换插件启停状态",
	Long:  "运行中或异常的插件会被停用，已停用的插件会被启用。操作成功后重新拉取告警、插件和指标。",
	Args:  cobra.ExactArgs(1),
	Run:   runPluginsToggle,
}

func init() {
	rootCmd.AddCommand(pluginsCmd)
	pluginsCmd.AddCommand(pluginsListCmd, pluginsToggleCmd)
}

func runPluginsList(cmd *cobra.Command, args []string) {
	a := loadApp()
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	sess := a.newOneShotSession()
	defer sess.Close()
	if err := sess.Coordinator().Reload(ctx); err != nil {
		a.fail("获取插件失败: %v", err)
	}

	snap := sess.Snapshot()
	if err := renderTable(pluginHeaders, pluginRows(snap.Plugins)); err != nil {
		a.fail("%v", err)
	}

	s := snap.PluginSummary
	fmt.Printf("\n共 %d 个插件（运行中 %d / 异常 %d / 已停用 %d），平均 CPU %.1f%%，平均内存 %.1f%%\n",
		s.Total, s.Active, s.Warning, s.Inactive, s.AvgCPUUsage, s.AvgMemoryUsage)
}

func runPluginsToggle(cmd *cobra.Command, args []string) {
	a := loadApp()
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	sess := a.newOneShotSession()
	defer sess.Close()

	// The current status decides the direction of the toggle
	if err := sess.Coordinator().Reload(ctx); err != nil {
		a.fail("获取插件失败: %v", err)
	}

	pluginID := args[0]
	target, err := sess.Coordinator().ToggleEntityState(ctx, pluginID)
	if errors.Is(err, service.ErrUnknownEntity) {
		a.fail("未知插件: %s", pluginID)
	}
	if err != nil {
		a.fail("切换插件状态失败: %v", err)
	}

	fmt.Printf("✅ 插件 %s 已切换为 %s\n", pluginID, pluginStatusText(target))
}
