package cli

import (
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version information for depotkit",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runVersion(check)
		},
	}

	cmd.Flags().StringVar(&check, "check", "", "Exit non-zero unless the version satisfies the constraint (e.g. \">= 0.1.0\")")

	return cmd
}

func runVersion(check string) error {
	fmt.Printf("depotkit version %s\n", Version)
	fmt.Printf("Build date: %s\n", BuildDate)
	fmt.Printf("Git commit: %s\n", GitCommit)

	if check == "" {
		return nil
	}

	current, err := version.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("invalid build version %q: %w", Version, err)
	}
	constraints, err := version.NewConstraint(check)
	if err != nil {
		return fmt.Errorf("invalid constraint %q: %w", check, err)
	}
	if !constraints.Check(current) {
		return fmt.Errorf("version %s does not satisfy constraint %q", Version, check)
	}
	fmt.Printf("Version satisfies constraint %q\n", check)
	return nil
}
