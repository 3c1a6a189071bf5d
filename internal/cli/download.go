package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depotkit/depotkit/internal/logger"
	"github.com/depotkit/depotkit/pkg/errors"
	"github.com/depotkit/depotkit/pkg/hook"
	"github.com/depotkit/depotkit/pkg/model"
	"github.com/depotkit/depotkit/pkg/orchestrator"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	var (
		gameName   string
		strict     bool
		permissive bool
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "download APPID...",
		Short: "Download depot manifests and keys for one or more AppIDs",
		Long: `Download depot manifests and decryption keys for the given AppIDs from the
configured repositories, in configured order, and package each result as a
zip archive with a generated unlock script.

An AppID may be given as a plain number or as a dash-separated string such as
"400-Portal"; the first numeric segment is used.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strict && permissive {
				return fmt.Errorf("--strict and --permissive are mutually exclusive")
			}
			return runDownload(cmd, args, gameName, strict, permissive, outputDir)
		},
	}

	cmd.Flags().StringVar(&gameName, "name", "", "Game name used for output files (default: the AppID)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Require decryption keys (overrides config)")
	cmd.Flags().BoolVar(&permissive, "permissive", false, "Take everything the repository has, keys optional (overrides config)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (overrides config)")

	return cmd
}

// ParseAppID extracts the AppID from user input. Inputs like "400-Portal"
// yield the first numeric dash-separated segment.
func ParseAppID(input string) (string, error) {
	for _, segment := range strings.Split(input, "-") {
		segment = strings.TrimSpace(segment)
		if segment != "" && isDigits(segment) {
			return segment, nil
		}
	}
	return "", fmt.Errorf("%q: %w", input, errors.ErrInvalidAppID)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func runDownload(cmd *cobra.Command, args []string, gameName string, strict, permissive bool, outputDir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	strictMode := cfg.Settings.StrictMode
	if strict {
		strictMode = true
	}
	if permissive {
		strictMode = false
	}
	if outputDir == "" {
		outputDir = cfg.Settings.OutputDir
	}

	repos := cfg.ToDescriptors()
	if len(repos) == 0 {
		return fmt.Errorf("no repositories configured, add one with 'depotkit repo add'")
	}

	reqs := make([]model.DownloadRequest, 0, len(args))
	for _, arg := range args {
		appID, err := ParseAppID(arg)
		if err != nil {
			return err
		}
		name := gameName
		if name == "" {
			name = appID
		}
		reqs = append(reqs, model.DownloadRequest{
			AppID:      appID,
			GameName:   name,
			Repos:      repos,
			StrictMode: strictMode,
		})
	}

	hooks, err := loadHookManager(cfg)
	if err != nil {
		return err
	}

	orch, err := buildOrchestrator(cfg, orchestrator.Hooks{OnEvent: printEvent})
	if err != nil {
		return err
	}

	results := orch.DownloadBatch(cmd.Context(), reqs, orchestrator.Options{OutputDir: outputDir})

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			logger.Error("download failed", logger.Fields{"appid": result.AppID, "error": result.Err.Error()})
			continue
		}
		if err := runPostHooks(hooks, result.Outcome); err != nil {
			failed++
			logger.Error("hook failed", logger.Fields{"appid": result.AppID, "error": err.Error()})
		}
	}
	if missing := len(reqs) - len(results); missing > 0 {
		failed += missing
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(reqs))
	}
	logger.Success("All downloads complete", logger.Fields{"count": len(results)})
	return nil
}

func runPostHooks(hooks *hook.DefaultHookManager, outcome *model.DownloadOutcome) error {
	hookCtx := hook.HookContext{
		AppID:      outcome.AppID,
		GameName:   outcome.GameName,
		OutputPath: outcome.OutputPath,
		Repository: outcome.SourceRepo,
	}
	if err := hooks.Execute(hook.PostDownload, hookCtx); err != nil {
		return err
	}
	return hooks.Execute(hook.PostPackage, hookCtx)
}

func printEvent(e orchestrator.Event) {
	switch e.Phase {
	case "resolving":
		logger.Info("Resolving", logger.Fields{"appid": e.AppID, "repo": e.Msg})
	case "processing":
		logger.Info("Processing", logger.Fields{"appid": e.AppID, "repo": e.Msg})
	case "assembling":
		logger.Info("Assembling", logger.Fields{"appid": e.AppID, "repo": e.Msg})
	case "skipped":
		logger.Info("Already downloaded", logger.Fields{"appid": e.AppID, "path": e.Msg})
	case "done":
		logger.Success("Download complete", logger.Fields{"appid": e.AppID, "path": e.Msg})
	case "error":
		logger.Warn("Source failed", logger.Fields{"appid": e.AppID, "detail": e.Msg})
	}
}
