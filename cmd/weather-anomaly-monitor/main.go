package main

import "github.com/i474232898/weather-anomaly-monitor/internal/cli"

func main() {
	cli.Execute()
}
