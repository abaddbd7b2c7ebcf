package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/aws-cost-analysis-go/pkg/version"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
          /$$$$$$  /$$      /$$  /$$$$$$         /$$$$$$                        /$$    
         /$$__  $$| $$  /$ | $$ /$$__  $$       /$$__  $$                      | $$    
        | $$  \ $$| $$ /$$$| $$| $$  \__/      | $$  \__/  /$$$$$$   /$$$$$$$ /$$$$$$  
        | $$$$$$$$| $$/$$ $$ $$|  $$$$$$       | $$       /$$__  $$ /$$_____/|_  $$_/  
        | $$__  $$| $$$$_  $$$$ \____  $$      | $$      | $$  \ $$|  $$$$$$   | $$    
        | $$  | $$| $$$/ \  $$$ /$$  \ $$      | $$    $$| $$  | $$ \____  $$  | $$ /$$
        | $$  | $$| $$/   \  $$|  $$$$$$/      |  $$$$$$/|  $$$$$$/ /$$$$$$$/  |  $$$$/
        |__/  |__/|__/     \__/ \______/        \______/  \______/ |_______/    \___/  
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	// Obtem a string formatada da versão através do pacote version
	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("AWS Cost Analysis API (v%s)", formattedVersion)))
}
