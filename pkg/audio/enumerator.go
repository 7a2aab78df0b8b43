package audio

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/lvim-tech/callrecorder/pkg/utils"
)

// DefaultDeviceName names the device used when nothing better is known.
// PulseAudio routes it to the server's default source.
const DefaultDeviceName = "default"

// Enumerator lists the input devices of the system.
type Enumerator interface {
	// InputDevices returns the available input devices.
	InputDevices() ([]Device, error)
	// DefaultInputDevice returns the system default input. It never
	// returns a null device.
	DefaultInputDevice() Device
}

// StaticEnumerator serves a fixed device list.
type StaticEnumerator struct {
	Devices []Device
	// Default is returned by DefaultInputDevice. When null, the first
	// device is used, then a generic "default" device.
	Default Device
}

// InputDevices returns the configured devices.
func (s StaticEnumerator) InputDevices() ([]Device, error) {
	return s.Devices, nil
}

// DefaultInputDevice returns the configured default.
func (s StaticEnumerator) DefaultInputDevice() Device {
	if !s.Default.IsNull() {
		return s.Default
	}
	if len(s.Devices) > 0 {
		return s.Devices[0]
	}
	return NewDevice(DefaultDeviceName, "")
}

// PulseEnumerator enumerates PulseAudio sources with pactl.
type PulseEnumerator struct {
	run func(name string, args ...string) (string, error)
}

// NewPulseEnumerator creates an enumerator running the system pactl.
func NewPulseEnumerator() *PulseEnumerator {
	return &PulseEnumerator{run: utils.RunCommand}
}

// InputDevices lists the sources from "pactl list short sources".
func (p *PulseEnumerator) InputDevices() ([]Device, error) {
	output, err := p.run("pactl", "list", "short", "sources")
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return parseShortSources(output), nil
}

// DefaultInputDevice returns the default source of the server, or a generic
// "default" device when the server cannot tell.
func (p *PulseEnumerator) DefaultInputDevice() Device {
	name := p.defaultSourceName()
	if name == "" {
		return NewDevice(DefaultDeviceName, "PulseAudio default source")
	}
	if devices, err := p.InputDevices(); err == nil {
		for _, device := range devices {
			if device.Name == name {
				return device
			}
		}
	}
	return NewDevice(name, "")
}

func (p *PulseEnumerator) defaultSourceName() string {
	if output, err := p.run("pactl", "get-default-source"); err == nil {
		if name := strings.TrimSpace(output); name != "" {
			return name
		}
	}
	// Servers older than 15.0 only report it through "pactl info".
	output, err := p.run("pactl", "info")
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		if name, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "Default Source:"); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}

// parseShortSources parses lines like
// "1	source.primary	module-droid-card.c	s16le 1ch 48000Hz	SUSPENDED".
func parseShortSources(output string) []Device {
	var devices []Device
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) < 2 {
			continue
		}
		name := strings.TrimSpace(fields[1])
		if name == "" {
			continue
		}
		description := ""
		if len(fields) >= 4 {
			description = strings.TrimSpace(fields[3])
		}
		devices = append(devices, NewDevice(name, description))
	}
	return devices
}
