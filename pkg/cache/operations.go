package cache

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/lodestone/internal/logger"
)

// Operation renders cache results for the command line.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clean cleans the cache based on the provided options.
func (op *Operation) Clean(options CleanOptions) (string, error) {
	logger.Debug("Cleaning cache", logger.Fields{
		"java":       options.Java,
		"assets":     options.Assets,
		"incomplete": options.Incomplete,
	})

	result, err := op.manager.Clean(options)
	if err != nil {
		return "", fmt.Errorf("failed to clean cache: %w", err)
	}

	if result.TotalFreed == 0 && len(result.Removed) == 0 {
		return "No files were removed from the cache.", nil
	}
	msg := fmt.Sprintf("Successfully cleaned cache. Freed %s of disk space.", FormatBytes(result.TotalFreed))
	if len(result.Removed) > 0 {
		msg += fmt.Sprintf("\n- Java: %s (%s)", FormatBytes(result.JavaFreed), strings.Join(result.Removed, ", "))
	}
	if result.AssetsFreed > 0 {
		msg += fmt.Sprintf("\n- Assets: %s", FormatBytes(result.AssetsFreed))
	}
	return msg, nil
}

// GetInfo returns information about the cache.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get cache info: %w", err)
	}

	return fmt.Sprintf(`Cache Information:
  Directory:    %s
  Total Size:   %s
  Java:         %s (%d installs, %d incomplete)
  Assets:       %s (%d files)
  Libraries:    %s (%d files)`,
		info.Directory,
		FormatBytes(info.TotalSize),
		FormatBytes(info.JavaSize),
		info.JavaInstalls,
		info.Incomplete,
		FormatBytes(info.AssetsSize),
		info.AssetFiles,
		FormatBytes(info.LibrariesSize),
		info.LibraryFiles,
	), nil
}

// GetDirectory returns the launcher directory path.
func (op *Operation) GetDirectory() string {
	return op.manager.GetDirectory()
}

// FormatBytes converts bytes to a human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
