//go:build ignore
// +build ignore

// This script reads and displays the contents of an exported snapshot workbook.
// Run with: go run scripts/read_excel.go [file.xlsx]
package main

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

func main() {
	path := "sample_alert_snapshot.xlsx"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	defer f.Close()

	fmt.Println("📊 Sheets:", f.GetSheetList())
	fmt.Println()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			fmt.Printf("  ❌ %s: %v\n", sheet, err)
			continue
		}

		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  %s (%d 行)\n", sheet, len(rows))
		fmt.Println("═══════════════════════════════════════")
		for i, row := range rows {
			// Long sheets only show the first rows
			if i >= 12 {
				fmt.Printf("  ... %d more rows\n", len(rows)-i)
				break
			}
			fmt.Printf("  %v\n", row)
		}
		fmt.Println()
	}

	fmt.Println("✅ Excel 快照验证完成！")
	fmt.Printf("   请用 Excel/WPS 打开 %s 查看完整样式\n", path)
}
