package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/depotkit/depotkit/internal/logger"
	"github.com/depotkit/depotkit/pkg/model"
)

// NewRepoCmd creates the repo command with subcommands.
func NewRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage repositories",
		Long:  "Add, remove, list, enable and disable depot mirror repositories",
	}

	cmd.AddCommand(
		newRepoListCmd(),
		newRepoAddCmd(),
		newRepoRemoveCmd(),
		newRepoEnableCmd(),
		newRepoDisableCmd(),
	)

	return cmd
}

func newRepoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured repositories",
		Long:  "List all configured repositories in failover order",
		RunE:  runRepoList,
	}
}

func newRepoAddCmd() *cobra.Command {
	var (
		kind     string
		category string
		disabled bool
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a repository",
		Long:  "Add a GitHub repository (owner/repo) as a download source",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepoAdd(args[0], kind, category, !disabled)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(model.KindKeySource), "Repository kind (keysource or passthrough)")
	cmd.Flags().StringVar(&category, "category", "", "Repository category (encrypted or decrypted)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Add the repository without enabling it")

	return cmd
}

func newRepoRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepoRemove(args[0])
		},
	}
}

func newRepoEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable NAME",
		Short: "Enable a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepoSetEnabled(args[0], true)
		},
	}
}

func newRepoDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable NAME",
		Short: "Disable a repository without removing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runRepoSetEnabled(args[0], false)
		},
	}
}

func runRepoList(*cobra.Command, []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(cfg.Repositories) == 0 {
		fmt.Println("No repositories configured.")
		return nil
	}

	tabWriter := tabwriter.NewWriter(os.Stdout, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tabWriter, "NAME\tKIND\tCATEGORY\tSTATUS")
	for _, repo := range cfg.Repositories {
		status := "enabled"
		if !repo.Enabled {
			status = "disabled"
		}
		category := repo.Category
		if category == "" {
			category = "-"
		}
		_, _ = fmt.Fprintf(tabWriter, "%s\t%s\t%s\t%s\n", repo.Name, repo.Kind, category, status)
	}
	return tabWriter.Flush()
}

func runRepoAdd(name, kind, category string, enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.AddRepository(name, kind, category, enabled); err != nil {
		return err
	}
	if err := cfg.SaveConfig(getConfigPath()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger.Success("Repository added", logger.Fields{"name": name, "kind": kind})
	return nil
}

func runRepoRemove(name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.RemoveRepository(name) {
		return fmt.Errorf("repository %q not found", name)
	}
	if err := cfg.SaveConfig(getConfigPath()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	logger.Success("Repository removed", logger.Fields{"name": name})
	return nil
}

func runRepoSetEnabled(name string, enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !cfg.EnableRepository(name, enabled) {
		return fmt.Errorf("repository %q not found", name)
	}
	if err := cfg.SaveConfig(getConfigPath()); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	logger.Success("Repository "+state, logger.Fields{"name": name})
	return nil
}
