// Package main is the entry point for the alert monitor CLI.
package main

import "alert-monitor/cmd/alertmon/cmd"

func main() {
	cmd.Execute()
}
