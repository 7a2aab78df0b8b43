// Package config provides the persisted call recorder configuration.
// It handles locating the settings file, applying defaults to missing keys,
// and reading and writing the file.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lvim-tech/callrecorder/pkg/utils"
)

// FileName is the name of the settings file inside the application config directory.
const FileName = "callrecorder.ini"

// Keys of the settings file. Dotted keys live in the section named by the prefix.
const (
	KeyDeviceName      = "deviceName"
	KeyOutputLocation  = "outputLocation"
	KeyOperationMode   = "operationMode"
	KeySampleRate      = "encoder.sampleRate"
	KeySampleSize      = "encoder.sampleSize"
	KeyCompression     = "encoder.compression"
	KeyLocale          = "ui.locale"
	KeyLimitStorage    = "storage.limitStorage"
	KeyMaxStorageAge   = "storage.maxStorageAge"
	KeyMaxStorageSize  = "storage.maxStorageSize"
	KeyRequireApproval = "storage.requireApproval"
)

// Keys lists every key in file order.
var Keys = []string{
	KeyDeviceName,
	KeyOutputLocation,
	KeyOperationMode,
	KeySampleRate,
	KeySampleSize,
	KeyCompression,
	KeyLocale,
	KeyLimitStorage,
	KeyMaxStorageAge,
	KeyMaxStorageSize,
	KeyRequireApproval,
}

// ErrUnknownKey is returned when looking up a key missing from Keys.
var ErrUnknownKey = errors.New("unknown setting")

// OperationMode tells whether the contact list is a deny-list or an allow-list.
type OperationMode int

const (
	// BlackList records every call except the listed contacts.
	BlackList OperationMode = iota
	// WhiteList records only the listed contacts.
	WhiteList
)

// ParseOperationMode maps the persisted literal to a mode. Anything but
// "whitelist" is BlackList.
func ParseOperationMode(s string) OperationMode {
	if s == "whitelist" {
		return WhiteList
	}
	return BlackList
}

// String returns the persisted literal.
func (m OperationMode) String() string {
	if m == WhiteList {
		return "whitelist"
	}
	return "blacklist"
}

// Environment locates the application directories.
type Environment struct {
	AppName   string
	ConfigDir string
	// DataDir is the per-application data directory.
	DataDir string
}

// DefaultEnvironment resolves the XDG directories for appName.
func DefaultEnvironment(appName string) Environment {
	return Environment{
		AppName:   appName,
		ConfigDir: utils.GetConfigDir(),
		DataDir:   filepath.Join(utils.GetDataDir(), appName),
	}
}

// ConfigPath returns <config-dir>/<app-name>/callrecorder.ini.
func (e Environment) ConfigPath() string {
	return filepath.Join(e.ConfigDir, e.AppName, FileName)
}

// Config holds every persisted setting.
type Config struct {
	InputDeviceName string
	OutputLocation  string
	OperationMode   OperationMode

	SampleRate  int
	SampleSize  int
	Compression int

	Locale string

	LimitStorage    bool
	MaxStorageAge   int // days
	MaxStorageSize  int // MB
	RequireApproval bool
}

// Defaults returns the configuration used for missing keys.
func Defaults(env Environment) Config {
	return Config{
		InputDeviceName: "source.primary",
		OutputLocation:  filepath.Join(env.DataDir, "data"),
		OperationMode:   BlackList,
		SampleRate:      32000,
		SampleSize:      16,
		Compression:     8,
		Locale:          "system",
		LimitStorage:    false,
		MaxStorageAge:   365,
		MaxStorageSize:  1024,
		RequireApproval: false,
	}
}

// Get returns the value stored under key. Operation mode is returned as its literal.
func (c Config) Get(key string) (any, error) {
	switch key {
	case KeyDeviceName:
		return c.InputDeviceName, nil
	case KeyOutputLocation:
		return c.OutputLocation, nil
	case KeyOperationMode:
		return c.OperationMode.String(), nil
	case KeySampleRate:
		return c.SampleRate, nil
	case KeySampleSize:
		return c.SampleSize, nil
	case KeyCompression:
		return c.Compression, nil
	case KeyLocale:
		return c.Locale, nil
	case KeyLimitStorage:
		return c.LimitStorage, nil
	case KeyMaxStorageAge:
		return c.MaxStorageAge, nil
	case KeyMaxStorageSize:
		return c.MaxStorageSize, nil
	case KeyRequireApproval:
		return c.RequireApproval, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// splitKey returns the section and the name of a dotted key.
func splitKey(key string) (string, string) {
	if section, name, ok := strings.Cut(key, "."); ok {
		return section, name
	}
	return "", key
}
