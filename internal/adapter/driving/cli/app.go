package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diillson/aws-cost-analysis-go/internal/adapter/driven/aws"
	"github.com/diillson/aws-cost-analysis-go/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-analysis-go/internal/adapter/driven/export"
	"github.com/diillson/aws-cost-analysis-go/internal/adapter/driving/httpapi"
	"github.com/diillson/aws-cost-analysis-go/internal/application/usecase"
	"github.com/diillson/aws-cost-analysis-go/internal/domain/repository"
	"github.com/diillson/aws-cost-analysis-go/internal/shared/types"
	"github.com/diillson/aws-cost-analysis-go/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd    *cobra.Command
	configRepo repository.ConfigRepository
	version    string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "aws-cost-api",
		Short:   "AWS Cost Analysis API server",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "AWS Cost Analysis API version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("listen", "l", "", "Address the HTTP server listens on (default: :8000)")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "AWS profile to use for Cost Explorer calls")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region for credential resolution")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// SetConfigRepository sets the configuration file loader for the CLI app.
func (app *CLIApp) SetConfigRepository(repo repository.ConfigRepository) {
	app.configRepo = repo
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs() (*types.CLIArgs, error) {
	configFile, _ := app.rootCmd.Flags().GetString("config-file")
	listen, _ := app.rootCmd.Flags().GetString("listen")
	profile, _ := app.rootCmd.Flags().GetString("profile")
	region, _ := app.rootCmd.Flags().GetString("region")

	if configFile != "" {
		absPath, err := filepath.Abs(configFile)
		if err != nil {
			return nil, err
		}
		configFile = absPath
	}

	return &types.CLIArgs{
		ConfigFile: configFile,
		ListenAddr: listen,
		Profile:    profile,
		Region:     region,
	}, nil
}

// loadConfig resolve a configuração efetiva: padrões, depois arquivo,
// depois flags de linha de comando (maior precedência).
func (app *CLIApp) loadConfig(args *types.CLIArgs) (*types.Config, error) {
	cfg := types.DefaultConfig()

	if args.ConfigFile != "" {
		if app.configRepo == nil {
			app.configRepo = config.NewConfigRepository()
		}
		fileCfg, err := app.configRepo.LoadConfigFile(args.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", args.ConfigFile, err)
		}
		cfg.Merge(fileCfg)
	}

	cfg.Merge(&types.Config{
		ListenAddr: args.ListenAddr,
		AWSProfile: args.Profile,
		AWSRegion:  args.Region,
	})

	return cfg, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go version.CheckLatestVersion(app.version)

	cliArgs, err := app.parseArgs()
	if err != nil {
		return err
	}

	cfg, err := app.loadConfig(cliArgs)
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Str("app", "aws-cost-api").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	costRepo, err := aws.NewCostRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing AWS repository: %w", err)
	}
	exportRepo := export.NewExportRepository()

	analysisUseCase := usecase.NewAnalysisUseCase(costRepo, exportRepo, cfg, logger)
	server := httpapi.NewServer(analysisUseCase, logger)

	errChan := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("starting HTTP server")
		errChan <- server.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	// Desligamento gracioso: aguarda requisições em andamento terminarem.
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
