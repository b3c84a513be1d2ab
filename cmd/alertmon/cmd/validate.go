package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alert-monitor/internal/config"
)

var alertTypesPath string // Alert type display table to validate (optional)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "验证配置文件",
	Long: `加载并验证配置文件，检查格式、必填字段、数值范围和业务逻辑约束
（例如 SSE 传输只能配合 REST 操作通道使用）。
如果配置了告警类型文件，也会一并校验。`,
	Run: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&alertTypesPath, "alert-types", "", "告警类型定义文件路径（默认使用配置中的 session.alert_types_file）")
}

// runValidate executes the validate command logic.
func runValidate(cmd *cobra.Command, args []string) {
	configPath := GetConfigFile()

	// Load internally calls Validate
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 配置验证失败: %v\n", err)
		os.Exit(1)
	}

	typesPath := alertTypesPath
	if typesPath == "" {
		typesPath = cfg.Session.AlertTypesFile
	}
	catalog, err := config.LoadAlertTypes(typesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ 告警类型定义验证失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ 配置文件验证通过: %s\n", configPath)
	fmt.Printf("   推送通道: %s (%s)\n", cfg.Stream.Transport, cfg.Stream.URL)
	fmt.Printf("   操作通道: %s\n", cfg.Mutation.Channel)
	fmt.Printf("   告警类型: %d 种\n", catalog.Len())
}
