package cli

import (
	"fmt"

	"github.com/depotkit/depotkit/internal/logger"
	"github.com/depotkit/depotkit/pkg/assembler"
	"github.com/depotkit/depotkit/pkg/config"
	"github.com/depotkit/depotkit/pkg/download"
	"github.com/depotkit/depotkit/pkg/hook"
	"github.com/depotkit/depotkit/pkg/mirror"
	"github.com/depotkit/depotkit/pkg/orchestrator"
	"github.com/depotkit/depotkit/pkg/policy"
	"github.com/depotkit/depotkit/pkg/resolver"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
)

func userAgent() string {
	return "depotkit/" + Version
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}
	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		return "config.yaml"
	}
	return defaultPath
}

// loadConfig loads the configuration and initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		logLevel = "debug"
	}
	noColor := NoColor != nil && *NoColor
	logger.InitLogger(logLevel, noColor)

	return cfg, nil
}

// buildOrchestrator wires the pipeline components from configuration.
func buildOrchestrator(cfg *config.Config, hooks orchestrator.Hooks) (*orchestrator.Orchestrator, error) {
	ghClient := resolver.New(cfg.Settings.GitHubToken, cfg.Settings.HTTPTimeout)
	if cfg.Settings.APIBaseURL != "" {
		if err := ghClient.SetBaseURL(cfg.Settings.APIBaseURL); err != nil {
			return nil, fmt.Errorf("invalid api_base_url: %w", err)
		}
	}

	mirrors := mirror.NewManager(cfg.Settings.HTTPTimeout, userAgent())
	engine := policy.NewEngine(mirrors)

	archives := &orchestrator.ZipballFetcher{
		Links: ghClient,
		DL:    download.NewManager(cfg.Settings.ArchiveTimeout, userAgent()),
	}

	return orchestrator.New(ghClient, engine, archives, assembler.NewManager(), hooks), nil
}

// loadHookManager registers the configured hook scripts, if any.
func loadHookManager(cfg *config.Config) (*hook.DefaultHookManager, error) {
	manager := hook.NewHookManager()
	if path := cfg.Settings.Hooks.PostDownload; path != "" {
		if err := hook.LoadScriptFile(manager, hook.PostDownload, path); err != nil {
			return nil, err
		}
	}
	if path := cfg.Settings.Hooks.PostPackage; path != "" {
		if err := hook.LoadScriptFile(manager, hook.PostPackage, path); err != nil {
			return nil, err
		}
	}
	return manager, nil
}
