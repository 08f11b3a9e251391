package main

import "payroll-monitor/cmd"

func main() {
	cmd.Execute()
}
