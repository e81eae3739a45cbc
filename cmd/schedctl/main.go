// Package main содержит точку входа CLI-клиента schedctl.
//
// Пакет передаёт в CLI-слой версию и дату сборки:
//
//	go build -ldflags "-X main.buildVersion=1.0.0 -X main.buildDate=$(date +%F)" ./cmd/schedctl
package main

import "github.com/IvanChernomyrdin/go-meeting-scheduler/internal/agent/cli"

var (
	// buildVersion содержит версию приложения, передаваемую при сборке.
	buildVersion = "dev"
	// buildDate содержит дату сборки приложения.
	buildDate = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
