package main

import (
	"fmt"
	"os"

	"github.com/diillson/aws-cost-analysis-go/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-analysis-go/internal/adapter/driving/cli"
	"github.com/diillson/aws-cost-analysis-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa o repositório de configuração
	configRepo := config.NewConfigRepository()
	app.SetConfigRepository(configRepo)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
