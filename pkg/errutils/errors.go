// Package errutils provides the error taxonomy shared by every lodestone component.
// It defines sentinel errors for domain conditions, typed errors for the transport,
// parse, filesystem and subprocess categories, and helpers for adding context while
// errors propagate up the call stack.
package errutils

import (
	"fmt"
)

// Category sentinels. Typed errors unwrap to one of these so callers can branch
// with errors.Is without caring about the concrete type.
var (
	ErrTransport  = fmt.Errorf("transport error")
	ErrParse      = fmt.Errorf("parse error")
	ErrFilesystem = fmt.Errorf("filesystem error")
	ErrSubprocess = fmt.Errorf("subprocess failed")
)

// Domain errors.
var (
	// ErrVersionNotFound is returned when a version id is absent from the manifest.
	ErrVersionNotFound = fmt.Errorf("version not found in manifest")

	// ErrNoServerDownload is returned when a version has no dedicated server artifact.
	ErrNoServerDownload = fmt.Errorf("no server download available for this version")

	// ErrNoLoaderVersion is returned when no backend lists a loader for the target.
	ErrNoLoaderVersion = fmt.Errorf("no compatible loader version found")

	// ErrUnknownLoader is returned for a loader kind or backend nobody registered.
	ErrUnknownLoader = fmt.Errorf("unknown mod loader")

	// ErrInstanceExists is returned when creating an instance whose directory already exists.
	ErrInstanceExists = fmt.Errorf("instance already exists")

	// ErrInstanceNotFound is returned when operating on an instance that was never created.
	ErrInstanceNotFound = fmt.Errorf("instance not found")

	// ErrServerExists is returned when creating a server whose directory already exists.
	ErrServerExists = fmt.Errorf("server already exists")

	// ErrInstanceLocked is returned when another process is installing into the same instance.
	ErrInstanceLocked = fmt.Errorf("instance is locked by another install")

	ErrUnsupportedPlatform  = fmt.Errorf("java runtime is not available for this platform")
	ErrUnsupportedOnlyJava8 = fmt.Errorf("only java 8 is available for this platform")
	ErrUnknownExtension     = fmt.Errorf("unknown archive extension")

	// ErrNativesOutsideDir is returned when an extract.exclude entry resolves outside the natives directory.
	ErrNativesOutsideDir = fmt.Errorf("refusing to remove path outside natives directory")

	// ErrStageNotRestageable is returned by RedoStage for stages that cannot be redone.
	ErrStageNotRestageable = fmt.Errorf("stage cannot be redone")

	ErrNeoForgeOutdatedMinecraft = fmt.Errorf("neoforge requires minecraft 1.20.2 or newer")
	ErrNoInstallJSON             = fmt.Errorf("installer contains neither version.json nor install_profile.json")
	ErrLegacyForgeUnsupported    = fmt.Errorf("forge for this version requires a jar-mod install, which is not supported")

	// ErrChecksumMismatch is returned when a downloaded file does not match its advertised hash.
	ErrChecksumMismatch = fmt.Errorf("checksum mismatch")

	ErrInvalidPath = fmt.Errorf("invalid path")
)

// Config errors.
var (
	ErrEmptyConfigPath      = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse          = fmt.Errorf("failed to parse config")
	ErrConfigValidation     = fmt.Errorf("invalid configuration")
	ErrConfigEncode         = fmt.Errorf("failed to encode config")
	ErrConfigDirectory      = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate     = fmt.Errorf("failed to create config file")
	ErrConfigFileRename     = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists     = fmt.Errorf("configuration file already exists")
	ErrHTTPTimeoutNegative  = fmt.Errorf("http_timeout cannot be negative")
	ErrMaxConcurrentInvalid = fmt.Errorf("max_concurrent_downloads must be at least 1")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat     = fmt.Errorf("invalid log format")
	ErrUnknownConfigKey     = fmt.Errorf("unknown configuration key")
)

// Wrap wraps an error with additional context.
// If the error is nil, Wrap returns nil.
//
// Example:
//
//	if err := someOperation(); err != nil {
//	    return errutils.Wrap(err, "failed to perform operation")
//	}
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
// If the error is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrVersionNotFoundWithID returns ErrVersionNotFound annotated with the requested id.
func ErrVersionNotFoundWithID(id string) error {
	return fmt.Errorf("%w: %s", ErrVersionNotFound, id)
}

// ErrInstanceExistsWithName returns ErrInstanceExists annotated with the instance name.
func ErrInstanceExistsWithName(name string) error {
	return fmt.Errorf("instance '%s': %w", name, ErrInstanceExists)
}

// ErrInstanceNotFoundWithName returns ErrInstanceNotFound annotated with the instance name.
func ErrInstanceNotFoundWithName(name string) error {
	return fmt.Errorf("instance '%s': %w", name, ErrInstanceNotFound)
}

// ErrServerExistsWithName returns ErrServerExists annotated with the server name.
func ErrServerExistsWithName(name string) error {
	return fmt.Errorf("server '%s': %w", name, ErrServerExists)
}

// ErrNoLoaderVersionFor returns ErrNoLoaderVersion annotated with the loader and game version.
func ErrNoLoaderVersionFor(loader, game string) error {
	return fmt.Errorf("%s for %s: %w", loader, game, ErrNoLoaderVersion)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidLogFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidLogFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, pretty", ErrInvalidLogFormat, format)
}
