package interfaces

import (
	"context"

	"retagger/internal/config"
	"retagger/internal/shared"
	"retagger/internal/tags"
)

// ConfigService defines the interface for configuration management
type ConfigService interface {
	// LoadConfig loads configuration from file
	LoadConfig(configFile string) (*config.Config, error)

	// SaveConfig saves configuration to file
	SaveConfig(configFile string, config *config.Config) error

	// ValidateConfig validates configuration settings
	ValidateConfig(config *config.Config) error

	// GetDefaultConfig returns a default configuration
	GetDefaultConfig() *config.Config

	// EnsureConfigExists creates a default config file if it doesn't exist
	EnsureConfigExists(configFile string) error
}

// FileSystemService defines the interface for file system operations
type FileSystemService interface {
	// EnsureDirectoryExists creates a directory if it doesn't exist
	EnsureDirectoryExists(path string) error

	// FileExists checks if a file exists
	FileExists(path string) bool

	// GetFileSize returns the size of a file
	GetFileSize(path string) (int64, error)

	// SanitizeFileName sanitizes a filename for the file system
	SanitizeFileName(filename string) string

	// RelocationPath builds the destination of a saved file from the output
	// directory and file naming mask in cfg.
	RelocationPath(rec tags.Record, currentPath string, cfg *config.Config) string

	// MoveFile renames src to dst, copying across file systems when needed.
	MoveFile(src, dst string) error
}

// LoggerService defines the interface for logging operations
type LoggerService interface {
	// Info logs an informational message
	Info(message string, args ...interface{})

	// Warning logs a warning message
	Warning(message string, args ...interface{})

	// Error logs an error message
	Error(message string, args ...interface{})

	// Debug logs a debug message
	Debug(message string, args ...interface{})

	// Success logs a success message
	Success(message string, args ...interface{})

	// SetDebugMode enables or disables debug logging
	SetDebugMode(enabled bool)
}

// WarningCollectorService defines the interface for warning collection
type WarningCollectorService interface {
	// AddWarning adds a warning to the collection
	AddWarning(warningType shared.WarningType, context, message, details string)

	// AddDecodeWarning records a file whose tags could not be decoded
	AddDecodeWarning(path, details string)

	// AddPartialFetchWarning records a failed remote sub-lookup
	AddPartialFetchWarning(path, part, details string)

	// HasWarnings returns true if there are any warnings
	HasWarnings() bool

	// GetWarningCount returns the total number of warnings
	GetWarningCount() int

	// PrintSummary prints a formatted summary of all warnings
	PrintSummary()
}

// LibraryNotifier is told when files on disk changed so a media server can
// pick the new tags up.
type LibraryNotifier interface {
	// Name identifies the server in logs and warnings
	Name() string

	// LibraryChanged asks the server to rescan its library
	LibraryChanged(ctx context.Context) error
}
