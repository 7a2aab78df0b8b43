package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/ini.v1"
)

// GeneralSection holds top-level keys in files written by QSettings.
const GeneralSection = "General"

// Values are read verbatim: '#' and ';' only start a comment at the
// beginning of a line. Surrounding quotes are stripped.
var loadOptions = ini.LoadOptions{
	IgnoreInlineComment: true,
}

// Load reads the settings file at path over defaults.
//
// A missing file is not an error. A file that cannot be parsed yields the
// defaults and the parse error. Keys are coerced one by one; a key whose value
// cannot be coerced keeps its default and is reported in the returned error.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults

	doc, err := readDocument(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	var operationMode string
	errs := []error{
		decodeKey(doc, KeyDeviceName, &cfg.InputDeviceName),
		decodeKey(doc, KeyOutputLocation, &cfg.OutputLocation),
		decodeKey(doc, KeyOperationMode, &operationMode),
		decodeKey(doc, KeySampleRate, &cfg.SampleRate),
		decodeKey(doc, KeySampleSize, &cfg.SampleSize),
		decodeKey(doc, KeyCompression, &cfg.Compression),
		decodeKey(doc, KeyLocale, &cfg.Locale),
		decodeKey(doc, KeyLimitStorage, &cfg.LimitStorage),
		decodeKey(doc, KeyMaxStorageAge, &cfg.MaxStorageAge),
		decodeKey(doc, KeyMaxStorageSize, &cfg.MaxStorageSize),
		decodeKey(doc, KeyRequireApproval, &cfg.RequireApproval),
	}
	if operationMode != "" {
		cfg.OperationMode = ParseOperationMode(operationMode)
	}

	if err := errors.Join(errs...); err != nil {
		return cfg, fmt.Errorf("invalid values in %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the parent directory. Keys and sections
// unknown to Config that are already in the file are kept.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	doc, err := readDocument(path)
	if err != nil {
		// Missing or unparseable: start from an empty document.
		doc = ini.Empty(loadOptions)
	}

	var buf bytes.Buffer
	if _, err := document(cfg, doc).WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Encode writes cfg in the settings file format to w.
func Encode(w io.Writer, cfg Config) error {
	_, err := document(cfg, ini.Empty(loadOptions)).WriteTo(w)
	return err
}

// readDocument parses the INI file at path.
func readDocument(path string) (*ini.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// document stores every setting of cfg into doc and returns it.
func document(cfg Config, doc *ini.File) *ini.File {
	setKey(doc, KeyDeviceName, cfg.InputDeviceName)
	setKey(doc, KeyOutputLocation, cfg.OutputLocation)
	setKey(doc, KeyOperationMode, cfg.OperationMode.String())
	setKey(doc, KeySampleRate, strconv.Itoa(cfg.SampleRate))
	setKey(doc, KeySampleSize, strconv.Itoa(cfg.SampleSize))
	setKey(doc, KeyCompression, strconv.Itoa(cfg.Compression))
	setKey(doc, KeyLocale, cfg.Locale)
	setKey(doc, KeyLimitStorage, strconv.FormatBool(cfg.LimitStorage))
	setKey(doc, KeyMaxStorageAge, strconv.Itoa(cfg.MaxStorageAge))
	setKey(doc, KeyMaxStorageSize, strconv.Itoa(cfg.MaxStorageSize))
	setKey(doc, KeyRequireApproval, strconv.FormatBool(cfg.RequireApproval))
	return doc
}

// sectionsOf returns where key may be stored. Top-level keys are either
// before the first section or in [General].
func sectionsOf(section string) []string {
	if section == "" {
		return []string{GeneralSection, ini.DefaultSection}
	}
	return []string{section}
}

func lookupKey(doc *ini.File, key string) (string, bool) {
	section, name := splitKey(key)
	for _, candidate := range sectionsOf(section) {
		sec, err := doc.GetSection(candidate)
		if err != nil {
			continue
		}
		if sec.HasKey(name) {
			return sec.Key(name).String(), true
		}
	}
	return "", false
}

// setKey overwrites key in place. Top-level keys go to [General] when the
// file has one, unless the key is only set before the first section.
func setKey(doc *ini.File, key, value string) {
	section, name := splitKey(key)
	if section == "" {
		section = ini.DefaultSection
		if general, err := doc.GetSection(GeneralSection); err == nil {
			top, err := doc.GetSection(ini.DefaultSection)
			if err != nil || !top.HasKey(name) || general.HasKey(name) {
				section = GeneralSection
			}
		}
	}
	doc.Section(section).Key(name).SetValue(value)
}

// decodeKey coerces the value stored under key into out. out is left
// untouched when the key is absent or cannot be coerced.
func decodeKey[T any](doc *ini.File, key string, out *T) error {
	raw, ok := lookupKey(doc, key)
	if !ok {
		return nil
	}
	var value T
	if err := mapstructure.WeakDecode(raw, &value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*out = value
	return nil
}

// Coerce converts a raw value, such as a command line argument, into the
// type stored under key. Operation modes must be one of the two literals.
func Coerce(key string, raw any) (any, error) {
	switch key {
	case KeyDeviceName, KeyOutputLocation, KeyLocale:
		var s string
		err := mapstructure.WeakDecode(raw, &s)
		return s, err
	case KeyOperationMode:
		var s string
		if err := mapstructure.WeakDecode(raw, &s); err != nil {
			return nil, err
		}
		if s != WhiteList.String() && s != BlackList.String() {
			return nil, fmt.Errorf("%s: %q is neither whitelist nor blacklist", key, s)
		}
		return ParseOperationMode(s), nil
	case KeySampleRate, KeySampleSize, KeyCompression, KeyMaxStorageAge, KeyMaxStorageSize:
		var i int
		err := mapstructure.WeakDecode(raw, &i)
		return i, err
	case KeyLimitStorage, KeyRequireApproval:
		var b bool
		err := mapstructure.WeakDecode(raw, &b)
		return b, err
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}
