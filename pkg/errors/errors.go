package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")

	// Pipeline errors.
	ErrNotFound              = fmt.Errorf("file not available on any mirror")
	ErrRepositoryUnavailable = fmt.Errorf("repository does not host this app")
	ErrAllSourcesExhausted   = fmt.Errorf("no selected repository yielded a result")
	ErrParse                 = fmt.Errorf("failed to parse key file")
	ErrInvalidRepository     = fmt.Errorf("repository name must be owner/repo")
	ErrInvalidAppID          = fmt.Errorf("app id must be numeric")
	ErrDownloadFailed        = fmt.Errorf("download failed")
	ErrInvalidPath           = fmt.Errorf("invalid path")

	// Hook errors.
	ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
