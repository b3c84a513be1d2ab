package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alert-monitor/internal/model"
)

// Command flags
var (
	exportDir     string   // Output directory for snapshots
	exportFormats []string // Output formats (excel, html)
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "导出监控快照",
	Long: `通过 REST 接口拉取告警、插件和指标，导出 Excel 和/或 HTML 格式的快照。

示例:
  # 使用配置中的格式和目录
  alertmon export -c config.yaml

  # 仅导出 HTML 到指定目录
  alertmon export -f html -o ./snapshots`,
	Args: cobra.NoArgs,
	Run:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringSliceVarP(&exportFormats, "format", "f", nil, "输出格式 (excel,html)，可用逗号分隔多个")
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "", "输出目录")
}

func runExport(cmd *cobra.Command, args []string) {
	a := loadApp()
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	sess := a.newOneShotSession()
	defer sess.Close()
	if err := sess.Load(ctx); err != nil {
		a.fail("获取数据失败: %v", err)
	}

	if !exportSnapshot(a, sess.Snapshot(), exportDir, exportFormats) {
		a.Close()
		os.Exit(1)
	}
}

// exportSnapshot writes the snapshot and prints each written file.
// It returns false if any format failed.
func exportSnapshot(a *app, snap *model.SessionSnapshot, dir string, formats []string) bool {
	fmt.Println("\n📄 导出快照:")
	paths, err := a.newExporter(dir).Export(snap, a.resolveFormats(formats))
	for _, p := range paths {
		fmt.Printf("   ✅ %s\n", p)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "   ❌ %v\n", err)
		return false
	}
	return true
}
