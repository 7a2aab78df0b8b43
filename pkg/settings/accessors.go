package settings

import (
	"fmt"

	"github.com/lvim-tech/callrecorder/pkg/audio"
	"github.com/lvim-tech/callrecorder/pkg/config"
)

// InputDevice returns the resolved input device. It is never null.
func (s *Store) InputDevice() audio.Device { return s.inputDevice }

// InputDeviceName returns the configured device name, which may differ from
// InputDevice().Name after a fallback.
func (s *Store) InputDeviceName() string { return s.cfg.InputDeviceName }

func (s *Store) OutputLocation() string              { return s.cfg.OutputLocation }
func (s *Store) OperationMode() config.OperationMode { return s.cfg.OperationMode }
func (s *Store) SampleRate() int                     { return s.cfg.SampleRate }
func (s *Store) SampleSize() int                     { return s.cfg.SampleSize }
func (s *Store) Compression() int                    { return s.cfg.Compression }
func (s *Store) Locale() string                      { return s.cfg.Locale }
func (s *Store) LimitStorage() bool                  { return s.cfg.LimitStorage }

// MaxStorageAge is in days.
func (s *Store) MaxStorageAge() int { return s.cfg.MaxStorageAge }

// MaxStorageSize is in megabytes.
func (s *Store) MaxStorageSize() int { return s.cfg.MaxStorageSize }

func (s *Store) RequireApproval() bool { return s.cfg.RequireApproval }

// update stores value into current and notifies listeners, unless the value
// is unchanged. apply runs between the update and the notifications.
func update[T comparable](s *Store, field Field, current *T, value T, apply func()) {
	if *current == value {
		return
	}
	*current = value
	s.log.Debug().Str("field", string(field)).Interface("value", value).Msg("setting changed")
	if apply != nil {
		apply()
	}
	s.emit(Event{Field: field, Value: value})
	s.emit(Event{Field: SettingsChanged})
}

// SetOutputLocation changes the output directory and prepares it.
func (s *Store) SetOutputLocation(path string) {
	update(s, FieldOutputLocation, &s.cfg.OutputLocation, path, s.ensureOutputLocation)
}

func (s *Store) SetOperationMode(mode config.OperationMode) {
	update(s, FieldOperationMode, &s.cfg.OperationMode, mode, nil)
}

func (s *Store) SetSampleRate(rate int) {
	update(s, FieldSampleRate, &s.cfg.SampleRate, rate, nil)
}

func (s *Store) SetCompression(compression int) {
	update(s, FieldCompression, &s.cfg.Compression, compression, nil)
}

func (s *Store) SetLocale(locale string) {
	update(s, FieldLocale, &s.cfg.Locale, locale, nil)
}

func (s *Store) SetLimitStorage(limit bool) {
	update(s, FieldLimitStorage, &s.cfg.LimitStorage, limit, nil)
}

func (s *Store) SetMaxStorageAge(days int) {
	update(s, FieldMaxStorageAge, &s.cfg.MaxStorageAge, days, nil)
}

func (s *Store) SetMaxStorageSize(megabytes int) {
	update(s, FieldMaxStorageSize, &s.cfg.MaxStorageSize, megabytes, nil)
}

func (s *Store) SetRequireApproval(require bool) {
	update(s, FieldRequireApproval, &s.cfg.RequireApproval, require, nil)
}

// Set coerces raw to the type of the setting stored under key and applies it
// through the matching setter.
func (s *Store) Set(key string, raw any) error {
	value, err := config.Coerce(key, raw)
	if err != nil {
		return err
	}
	switch key {
	case config.KeyOutputLocation:
		s.SetOutputLocation(value.(string))
	case config.KeyOperationMode:
		s.SetOperationMode(value.(config.OperationMode))
	case config.KeySampleRate:
		s.SetSampleRate(value.(int))
	case config.KeyCompression:
		s.SetCompression(value.(int))
	case config.KeyLocale:
		s.SetLocale(value.(string))
	case config.KeyLimitStorage:
		s.SetLimitStorage(value.(bool))
	case config.KeyMaxStorageAge:
		s.SetMaxStorageAge(value.(int))
	case config.KeyMaxStorageSize:
		s.SetMaxStorageSize(value.(int))
	case config.KeyRequireApproval:
		s.SetRequireApproval(value.(bool))
	default:
		return fmt.Errorf("%w: %s", ErrReadOnly, key)
	}
	return nil
}
