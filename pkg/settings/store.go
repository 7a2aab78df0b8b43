// Package settings provides the call recorder settings store.
//
// A Store loads the configuration file on creation, resolves the configured
// input device, keeps the output directory ready for recordings and notifies
// listeners when a setting changes. It is not safe for concurrent use.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lvim-tech/callrecorder/internal/logger"
	"github.com/lvim-tech/callrecorder/pkg/audio"
	"github.com/lvim-tech/callrecorder/pkg/config"
	"github.com/lvim-tech/callrecorder/pkg/utils"
)

// NoMediaFile tells the media indexer to skip the directory holding it.
const NoMediaFile = ".nomedia"

// ErrReadOnly is returned by Set for settings without a setter.
var ErrReadOnly = errors.New("setting is read-only")

// Store holds the configuration of the call recorder.
type Store struct {
	log     logger.Logger
	env     config.Environment
	devices audio.Enumerator

	cfg         config.Config
	inputDevice audio.Device
	outputErr   error

	subscribers      []subscriber
	nextSubscription Subscription
}

// New loads the settings of env. The configured input device is looked up
// among the devices listed by devices, falling back to their default input.
// A nil devices behaves as an empty StaticEnumerator.
// The output directory and its marker file are created when missing.
func New(log logger.Logger, env config.Environment, devices audio.Enumerator) *Store {
	if devices == nil {
		devices = audio.StaticEnumerator{}
	}
	s := &Store{
		log:     log.New("settings"),
		env:     env,
		devices: devices,
	}
	s.log.Debug().Str("path", s.ConfigPath()).Msg("loading settings")

	s.cfg = s.read()
	s.inputDevice = s.resolveInputDevice(s.cfg.InputDeviceName)
	s.ensureOutputLocation()
	return s
}

// ConfigPath returns the path of the settings file.
func (s *Store) ConfigPath() string {
	return s.env.ConfigPath()
}

// Config returns a copy of the current configuration.
func (s *Store) Config() config.Config {
	return s.cfg
}

// Devices lists the available input devices.
func (s *Store) Devices() ([]audio.Device, error) {
	return s.devices.InputDevices()
}

func (s *Store) read() config.Config {
	cfg, err := config.Load(s.ConfigPath(), config.Defaults(s.env))
	if err != nil {
		s.log.Warn().Err(err).Msg("unable to read settings, using defaults")
	}
	return cfg
}

func (s *Store) resolveInputDevice(name string) audio.Device {
	available, err := s.devices.InputDevices()
	if err != nil {
		s.log.Warn().Err(err).Msg("unable to enumerate input devices")
	}
	for _, device := range available {
		if device.Name == name {
			return device
		}
	}

	s.log.Info().Str("device", name).Msg("unable to find input device")
	device := s.devices.DefaultInputDevice()
	if device.IsNull() {
		device = audio.NewDevice(audio.DefaultDeviceName, "")
	}
	s.log.Info().Str("device", device.Name).Msg("fallen back to default input device")
	return device
}

// ensureOutputLocation creates the output directory and its marker file.
// Failures are logged; the directory failure is kept for OutputLocationErr.
func (s *Store) ensureOutputLocation() {
	dir := utils.ExpandHomeDir(s.cfg.OutputLocation)
	if err := utils.EnsureDir(dir); err != nil {
		s.outputErr = fmt.Errorf("unable to create output location %s: %w", dir, err)
		s.log.Error().Err(err).Str("path", dir).Msg("unable to create output location")
		return
	}
	s.outputErr = nil

	marker := filepath.Join(dir, NoMediaFile)
	if utils.FileExists(marker) {
		return
	}
	f, err := os.OpenFile(marker, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		s.log.Warn().Err(err).Str("path", marker).Msg("unable to create marker file")
		return
	}
	if err := f.Close(); err != nil {
		s.log.Warn().Err(err).Str("path", marker).Msg("unable to create marker file")
	}
}

// OutputLocationErr returns why the output directory could not be created,
// or nil when it exists.
func (s *Store) OutputLocationErr() error {
	return s.outputErr
}

// AudioFormat returns the capture format: mono little-endian signed PCM at the
// configured rate and size, snapped to what the input device supports.
func (s *Store) AudioFormat() audio.Format {
	return s.inputDevice.NearestFormat(audio.Format{
		SampleRate:   s.cfg.SampleRate,
		SampleSize:   s.cfg.SampleSize,
		ChannelCount: 1,
		ByteOrder:    audio.LittleEndian,
		SampleType:   audio.SignedInt,
		Codec:        audio.CodecPCM,
	})
}

// Reload reads the settings file again, dropping unsaved changes.
//
// When the device name changed, the input device is resolved again; when the
// output location changed, its directory is prepared. Listeners get an event
// for every setting whose value differs, then SettingsChanged.
func (s *Store) Reload() {
	s.log.Debug().Str("path", s.ConfigPath()).Msg("reloading settings")

	old := s.cfg
	oldDevice := s.inputDevice
	s.cfg = s.read()

	var events []Event
	if s.cfg.InputDeviceName != old.InputDeviceName {
		s.inputDevice = s.resolveInputDevice(s.cfg.InputDeviceName)
		if s.inputDevice.Name != oldDevice.Name {
			events = append(events, Event{Field: FieldInputDevice, Value: s.inputDevice})
		}
	}
	if s.cfg.OutputLocation != old.OutputLocation {
		s.ensureOutputLocation()
		events = append(events, Event{Field: FieldOutputLocation, Value: s.cfg.OutputLocation})
	}
	events = appendChanged(events, FieldOperationMode, old.OperationMode, s.cfg.OperationMode)
	events = appendChanged(events, FieldSampleRate, old.SampleRate, s.cfg.SampleRate)
	events = appendChanged(events, FieldSampleSize, old.SampleSize, s.cfg.SampleSize)
	events = appendChanged(events, FieldCompression, old.Compression, s.cfg.Compression)
	events = appendChanged(events, FieldLocale, old.Locale, s.cfg.Locale)
	events = appendChanged(events, FieldLimitStorage, old.LimitStorage, s.cfg.LimitStorage)
	events = appendChanged(events, FieldMaxStorageAge, old.MaxStorageAge, s.cfg.MaxStorageAge)
	events = appendChanged(events, FieldMaxStorageSize, old.MaxStorageSize, s.cfg.MaxStorageSize)
	events = appendChanged(events, FieldRequireApproval, old.RequireApproval, s.cfg.RequireApproval)

	if len(events) == 0 {
		return
	}
	for _, e := range events {
		s.emit(e)
	}
	s.emit(Event{Field: SettingsChanged})
}

func appendChanged[T comparable](events []Event, field Field, old, current T) []Event {
	if old == current {
		return events
	}
	return append(events, Event{Field: field, Value: current})
}

// Save writes the current settings to the settings file.
func (s *Store) Save() error {
	s.log.Debug().Str("path", s.ConfigPath()).Msg("saving settings")
	if err := config.Save(s.ConfigPath(), s.cfg); err != nil {
		s.log.Error().Err(err).Msg("unable to save settings")
		return err
	}
	return nil
}
