package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/glorpus-work/lodestone/pkg/errutils"
)

// Keys lists every key accepted by GetValue and SetValue, in display order.
var Keys = []string{
	"launcher_dir",
	"http_timeout",
	"max_concurrent_downloads",
	"java_file_concurrency",
	"user_agent",
	"log_level",
	"log_format",
	"hooks.post_create",
	"hooks.post_loader",
}

// SetValue sets a configuration value by key. The result is not validated;
// call Validate before saving.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "launcher_dir":
		c.Settings.LauncherDir = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "max_concurrent_downloads":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		c.Settings.MaxConcurrentDownloads = n
	case "java_file_concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		c.Settings.JavaFileConcurrency = n
	case "user_agent":
		c.Settings.UserAgent = value
	case "log_level":
		c.Settings.LogLevel = value
	case "log_format":
		c.Settings.LogFormat = value
	case "hooks.post_create":
		c.Hooks.PostCreate = value
	case "hooks.post_loader":
		c.Hooks.PostLoader = value
	default:
		return fmt.Errorf("%w: %s", errutils.ErrUnknownConfigKey, key)
	}
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case "launcher_dir":
		return c.Settings.LauncherDir, nil
	case "http_timeout":
		return c.Settings.HTTPTimeout.String(), nil
	case "max_concurrent_downloads":
		return strconv.Itoa(c.Settings.MaxConcurrentDownloads), nil
	case "java_file_concurrency":
		return strconv.Itoa(c.Settings.JavaFileConcurrency), nil
	case "user_agent":
		return c.Settings.UserAgent, nil
	case "log_level":
		return c.Settings.LogLevel, nil
	case "log_format":
		return c.Settings.LogFormat, nil
	case "hooks.post_create":
		return c.Hooks.PostCreate, nil
	case "hooks.post_loader":
		return c.Hooks.PostLoader, nil
	default:
		return "", fmt.Errorf("%w: %s", errutils.ErrUnknownConfigKey, key)
	}
}

// ToMap returns every key with its current value.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(Keys))
	for _, key := range Keys {
		v, _ := c.GetValue(key)
		result[key] = v
	}
	return result
}
