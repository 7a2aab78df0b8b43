package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/ini.v1"

	"github.com/lvim-tech/callrecorder/internal/logger"
	"github.com/lvim-tech/callrecorder/pkg/audio"
	"github.com/lvim-tech/callrecorder/pkg/config"
	"github.com/lvim-tech/callrecorder/pkg/utils"
)

func testEnvironment(t *testing.T) config.Environment {
	t.Helper()
	root := t.TempDir()
	return config.Environment{
		AppName:   "harbour-callrecorder",
		ConfigDir: filepath.Join(root, "config"),
		DataDir:   filepath.Join(root, "data", "harbour-callrecorder"),
	}
}

func testDevices() audio.StaticEnumerator {
	return audio.StaticEnumerator{
		Devices: []audio.Device{
			audio.NewDevice("source.primary", ""),
			audio.NewDevice("source.voicecall", ""),
		},
		Default: audio.NewDevice("source.fallback", ""),
	}
}

func writeConfig(t *testing.T, env config.Environment, content string) {
	t.Helper()
	path := env.ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// recorder collects the events delivered to a listener.
type recorder struct {
	events []Event
}

func (r *recorder) listen(e Event) {
	r.events = append(r.events, e)
}

func newStore(t *testing.T, env config.Environment) (*Store, *recorder) {
	t.Helper()
	s := New(logger.Nop(), env, testDevices())
	r := &recorder{}
	s.Subscribe(r.listen)
	return s, r
}

func assertOutputLocation(t *testing.T, dir string) {
	t.Helper()
	if !utils.IsDirectory(dir) {
		t.Fatalf("output location %s does not exist", dir)
	}
	if !utils.FileExists(filepath.Join(dir, NoMediaFile)) {
		t.Fatalf("marker file missing in %s", dir)
	}
}

func TestNewWithoutConfigFile(t *testing.T) {
	env := testEnvironment(t)
	s, _ := newStore(t, env)

	if got := s.SampleRate(); got != 32000 {
		t.Errorf("SampleRate() = %d, want 32000", got)
	}
	if got := s.OperationMode(); got != config.BlackList {
		t.Errorf("OperationMode() = %s, want blacklist", got)
	}
	if diff := cmp.Diff(config.Defaults(env), s.Config()); diff != "" {
		t.Errorf("Config() (-want, +got):\n%s", diff)
	}
	if got := s.OutputLocation(); got != filepath.Join(env.DataDir, "data") {
		t.Errorf("OutputLocation() = %q", got)
	}
	assertOutputLocation(t, s.OutputLocation())
	if err := s.OutputLocationErr(); err != nil {
		t.Errorf("OutputLocationErr() = %v", err)
	}
	if utils.FileExists(env.ConfigPath()) {
		t.Error("construction must not write the settings file")
	}
}

func TestNewWhiteList(t *testing.T) {
	env := testEnvironment(t)
	writeConfig(t, env, `operationMode = "whitelist"`)
	s, _ := newStore(t, env)

	if got := s.OperationMode(); got != config.WhiteList {
		t.Fatalf("OperationMode() = %s, want whitelist", got)
	}
}

func TestNewReadsEveryKey(t *testing.T) {
	env := testEnvironment(t)
	output := filepath.Join(t.TempDir(), "recordings")
	writeConfig(t, env, `
deviceName = "source.voicecall"
outputLocation = "`+output+`"

[encoder]
sampleRate = 16000
sampleSize = 8
compression = 3

[ui]
locale = "sv"

[storage]
limitStorage = true
maxStorageAge = 7
maxStorageSize = 100
requireApproval = true
`)
	s, _ := newStore(t, env)

	if got := s.InputDevice().Name; got != "source.voicecall" {
		t.Errorf("InputDevice() = %q, want source.voicecall", got)
	}
	if got := s.InputDeviceName(); got != "source.voicecall" {
		t.Errorf("InputDeviceName() = %q, want source.voicecall", got)
	}
	if got := s.OutputLocation(); got != output {
		t.Errorf("OutputLocation() = %q, want %q", got, output)
	}
	assertOutputLocation(t, output)
	if got := s.SampleRate(); got != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", got)
	}
	if got := s.SampleSize(); got != 8 {
		t.Errorf("SampleSize() = %d, want 8", got)
	}
	if got := s.Compression(); got != 3 {
		t.Errorf("Compression() = %d, want 3", got)
	}
	if got := s.Locale(); got != "sv" {
		t.Errorf("Locale() = %q, want sv", got)
	}
	if !s.LimitStorage() {
		t.Error("LimitStorage() = false, want true")
	}
	if got := s.MaxStorageAge(); got != 7 {
		t.Errorf("MaxStorageAge() = %d, want 7", got)
	}
	if got := s.MaxStorageSize(); got != 100 {
		t.Errorf("MaxStorageSize() = %d, want 100", got)
	}
	if !s.RequireApproval() {
		t.Error("RequireApproval() = false, want true")
	}
}

func TestInputDeviceResolution(t *testing.T) {
	cases := []struct {
		name    string
		config  string
		devices audio.Enumerator
		want    string
	}{
		{"default name", "", testDevices(), "source.primary"},
		{"configured name", `deviceName = "source.voicecall"`, testDevices(), "source.voicecall"},
		{"unknown name", `deviceName = "source.bluetooth"`, testDevices(), "source.fallback"},
		{"no devices", "", audio.StaticEnumerator{}, audio.DefaultDeviceName},
		{"nil enumerator", "", nil, audio.DefaultDeviceName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := testEnvironment(t)
			if tc.config != "" {
				writeConfig(t, env, tc.config)
			}
			s := New(logger.Nop(), env, tc.devices)
			device := s.InputDevice()
			if device.IsNull() {
				t.Fatal("InputDevice() is null")
			}
			if device.Name != tc.want {
				t.Fatalf("InputDevice() = %q, want %q", device.Name, tc.want)
			}
		})
	}
}

func TestSetUnchangedValueIsSilent(t *testing.T) {
	env := testEnvironment(t)
	s, r := newStore(t, env)

	s.SetCompression(8)
	s.SetSampleRate(32000)
	s.SetOperationMode(config.BlackList)
	s.SetLocale("system")
	s.SetLimitStorage(false)
	s.SetMaxStorageAge(365)
	s.SetMaxStorageSize(1024)
	s.SetRequireApproval(false)
	s.SetOutputLocation(s.OutputLocation())

	if len(r.events) != 0 {
		t.Fatalf("events = %+v, want none", r.events)
	}
}

func TestSetCompression(t *testing.T) {
	env := testEnvironment(t)
	s, r := newStore(t, env)

	s.SetCompression(5)

	want := []Event{
		{Field: FieldCompression, Value: 5},
		{Field: SettingsChanged},
	}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Fatalf("events (-want, +got):\n%s", diff)
	}
	if got := s.Compression(); got != 5 {
		t.Fatalf("Compression() = %d, want 5", got)
	}
}

func TestSettersNotify(t *testing.T) {
	cases := []struct {
		field Field
		set   func(*Store)
		value any
	}{
		{FieldOperationMode, func(s *Store) { s.SetOperationMode(config.WhiteList) }, config.WhiteList},
		{FieldSampleRate, func(s *Store) { s.SetSampleRate(44100) }, 44100},
		{FieldCompression, func(s *Store) { s.SetCompression(1) }, 1},
		{FieldLocale, func(s *Store) { s.SetLocale("fi") }, "fi"},
		{FieldLimitStorage, func(s *Store) { s.SetLimitStorage(true) }, true},
		{FieldMaxStorageAge, func(s *Store) { s.SetMaxStorageAge(30) }, 30},
		{FieldMaxStorageSize, func(s *Store) { s.SetMaxStorageSize(4096) }, 4096},
		{FieldRequireApproval, func(s *Store) { s.SetRequireApproval(true) }, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.field), func(t *testing.T) {
			s, r := newStore(t, testEnvironment(t))
			tc.set(s)
			want := []Event{{Field: tc.field, Value: tc.value}, {Field: SettingsChanged}}
			if diff := cmp.Diff(want, r.events); diff != "" {
				t.Fatalf("events (-want, +got):\n%s", diff)
			}
			// Setting the same value again is silent.
			tc.set(s)
			if len(r.events) != 2 {
				t.Fatalf("events after repeated set = %+v", r.events)
			}
		})
	}
}

func TestSetOutputLocation(t *testing.T) {
	env := testEnvironment(t)
	s := New(logger.Nop(), env, testDevices())
	target := filepath.Join(t.TempDir(), "sdcard", "recordings")

	var fields []Field
	s.Subscribe(func(e Event) {
		fields = append(fields, e.Field)
		if e.Field == FieldOutputLocation {
			// The directory is ready before listeners hear about it.
			assertOutputLocation(t, target)
			if e.Value != target {
				t.Errorf("event value = %v, want %s", e.Value, target)
			}
		}
	})

	s.SetOutputLocation(target)

	if diff := cmp.Diff([]Field{FieldOutputLocation, SettingsChanged}, fields); diff != "" {
		t.Fatalf("fields (-want, +got):\n%s", diff)
	}
	if got := s.OutputLocation(); got != target {
		t.Fatalf("OutputLocation() = %q, want %q", got, target)
	}
	assertOutputLocation(t, target)
}

func TestOutputLocationFailure(t *testing.T) {
	env := testEnvironment(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, r := newStore(t, env)

	s.SetOutputLocation(filepath.Join(blocker, "recordings"))

	if s.OutputLocationErr() == nil {
		t.Fatal("OutputLocationErr() = nil, want error")
	}
	// The setter still completes and notifies.
	if len(r.events) != 2 {
		t.Fatalf("events = %+v, want 2", r.events)
	}

	s.SetOutputLocation(filepath.Join(t.TempDir(), "ok"))
	if err := s.OutputLocationErr(); err != nil {
		t.Fatalf("OutputLocationErr() after fix = %v", err)
	}
}

func TestExistingMarkerKept(t *testing.T) {
	env := testEnvironment(t)
	dir := filepath.Join(env.DataDir, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	marker := filepath.Join(dir, NoMediaFile)
	if err := os.WriteFile(marker, []byte("keep"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	New(logger.Nop(), env, testDevices())

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "keep" {
		t.Fatalf("marker content = %q, want untouched", data)
	}
}

func TestSaveReloadIdempotent(t *testing.T) {
	env := testEnvironment(t)
	s, r := newStore(t, env)
	s.SetOperationMode(config.WhiteList)
	s.SetCompression(2)
	s.SetLocale("ru")
	s.SetMaxStorageSize(10)
	before := s.Config()
	r.events = nil

	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	s.Reload()

	if diff := cmp.Diff(before, s.Config()); diff != "" {
		t.Fatalf("Config() after Save/Reload (-want, +got):\n%s", diff)
	}
	if len(r.events) != 0 {
		t.Fatalf("Reload() of saved state emitted %+v", r.events)
	}

	fresh := New(logger.Nop(), env, testDevices())
	if diff := cmp.Diff(before, fresh.Config()); diff != "" {
		t.Fatalf("new store after Save (-want, +got):\n%s", diff)
	}
}

func TestPlainINIFile(t *testing.T) {
	env := testEnvironment(t)
	writeConfig(t, env, `deviceName = source.voicecall
operationMode = whitelist

[encoder]
sampleRate = 16000

[ui]
locale = sv

[custom]
foo = bar
`)
	s, _ := newStore(t, env)

	if got := s.InputDevice().Name; got != "source.voicecall" {
		t.Errorf("InputDevice() = %q, want source.voicecall", got)
	}
	if got := s.OperationMode(); got != config.WhiteList {
		t.Errorf("OperationMode() = %s, want whitelist", got)
	}
	if got := s.SampleRate(); got != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", got)
	}
	if got := s.Locale(); got != "sv" {
		t.Errorf("Locale() = %q, want sv", got)
	}

	s.SetCompression(6)
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	saved, err := ini.Load(env.ConfigPath())
	if err != nil {
		t.Fatalf("ini.Load() error = %v", err)
	}
	if got := saved.Section("custom").Key("foo").String(); got != "bar" {
		t.Fatalf("[custom] foo = %q after Save(), want bar", got)
	}
	if got := saved.Section("encoder").Key("compression").String(); got != "6" {
		t.Fatalf("[encoder] compression = %q after Save(), want 6", got)
	}

	fresh := New(logger.Nop(), env, testDevices())
	if diff := cmp.Diff(s.Config(), fresh.Config()); diff != "" {
		t.Fatalf("new store after Save (-want, +got):\n%s", diff)
	}
}

func TestOperationModeRoundTrip(t *testing.T) {
	for _, mode := range []config.OperationMode{config.WhiteList, config.BlackList} {
		env := testEnvironment(t)
		s := New(logger.Nop(), env, testDevices())
		s.SetOperationMode(mode)
		if err := s.Save(); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		s.SetOperationMode(1 - mode)
		s.Reload()
		if got := s.OperationMode(); got != mode {
			t.Fatalf("OperationMode() after reload = %s, want %s", got, mode)
		}
	}
}

func TestReloadDiscardsEdits(t *testing.T) {
	env := testEnvironment(t)
	s, r := newStore(t, env)
	s.SetCompression(5)
	r.events = nil

	s.Reload()

	if got := s.Compression(); got != 8 {
		t.Fatalf("Compression() after Reload = %d, want 8", got)
	}
	want := []Event{
		{Field: FieldCompression, Value: 8},
		{Field: SettingsChanged},
	}
	if diff := cmp.Diff(want, r.events); diff != "" {
		t.Fatalf("events (-want, +got):\n%s", diff)
	}
}

func TestReloadResolvesDeviceAndOutput(t *testing.T) {
	env := testEnvironment(t)
	s, r := newStore(t, env)
	output := filepath.Join(t.TempDir(), "moved")
	writeConfig(t, env, `
deviceName = "source.voicecall"
outputLocation = "`+output+`"

[encoder]
sampleSize = 24
`)

	s.Reload()

	if got := s.InputDevice().Name; got != "source.voicecall" {
		t.Fatalf("InputDevice() = %q, want source.voicecall", got)
	}
	assertOutputLocation(t, output)
	var fields []Field
	for _, e := range r.events {
		fields = append(fields, e.Field)
	}
	want := []Field{FieldInputDevice, FieldOutputLocation, FieldSampleSize, SettingsChanged}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields (-want, +got):\n%s", diff)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New(logger.Nop(), testEnvironment(t), testDevices())
	first, second := &recorder{}, &recorder{}
	id := s.Subscribe(first.listen)
	s.Subscribe(second.listen)

	s.SetSampleRate(8000)
	s.Unsubscribe(id)
	s.Unsubscribe(id)
	s.SetSampleRate(16000)

	if len(first.events) != 2 {
		t.Errorf("unsubscribed listener got %d events, want 2", len(first.events))
	}
	if len(second.events) != 4 {
		t.Errorf("subscribed listener got %d events, want 4", len(second.events))
	}
}

func TestListenerOrderAndReentrancy(t *testing.T) {
	s := New(logger.Nop(), testEnvironment(t), testDevices())
	var order []string
	s.Subscribe(func(e Event) {
		order = append(order, "a:"+string(e.Field))
		// Keep the age in step with the size limit.
		if e.Field == FieldLimitStorage {
			s.SetMaxStorageAge(90)
		}
	})
	s.Subscribe(func(e Event) {
		order = append(order, "b:"+string(e.Field))
	})

	s.SetLimitStorage(true)

	want := []string{
		"a:" + string(FieldLimitStorage),
		"a:" + string(FieldMaxStorageAge),
		"b:" + string(FieldMaxStorageAge),
		"a:" + string(SettingsChanged),
		"b:" + string(SettingsChanged),
		"b:" + string(FieldLimitStorage),
		"a:" + string(SettingsChanged),
		"b:" + string(SettingsChanged),
	}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("delivery order (-want, +got):\n%s", diff)
	}
	if got := s.MaxStorageAge(); got != 90 {
		t.Fatalf("MaxStorageAge() = %d, want 90", got)
	}
}

func TestAudioFormat(t *testing.T) {
	s := New(logger.Nop(), testEnvironment(t), testDevices())
	want := audio.Format{
		SampleRate:   32000,
		SampleSize:   16,
		ChannelCount: 1,
		ByteOrder:    audio.LittleEndian,
		SampleType:   audio.SignedInt,
		Codec:        audio.CodecPCM,
	}
	if diff := cmp.Diff(want, s.AudioFormat()); diff != "" {
		t.Fatalf("AudioFormat() (-want, +got):\n%s", diff)
	}

	narrow := audio.Device{
		Name:          "source.primary",
		SampleRates:   []int{8000, 48000},
		SampleSizes:   []int{16},
		ChannelCounts: []int{1, 2},
		ByteOrders:    []audio.ByteOrder{audio.LittleEndian},
		SampleTypes:   []audio.SampleType{audio.SignedInt},
		Codecs:        []string{audio.CodecPCM},
	}
	s = New(logger.Nop(), testEnvironment(t), audio.StaticEnumerator{Devices: []audio.Device{narrow}})
	s.SetSampleRate(44100)
	if got := s.AudioFormat().SampleRate; got != 48000 {
		t.Fatalf("AudioFormat().SampleRate = %d, want 48000", got)
	}
}

func TestSet(t *testing.T) {
	s, r := newStore(t, testEnvironment(t))

	if err := s.Set(config.KeySampleRate, "22050"); err != nil {
		t.Fatalf("Set(sampleRate) error = %v", err)
	}
	if err := s.Set(config.KeyOperationMode, "whitelist"); err != nil {
		t.Fatalf("Set(operationMode) error = %v", err)
	}
	if err := s.Set(config.KeyRequireApproval, "true"); err != nil {
		t.Fatalf("Set(requireApproval) error = %v", err)
	}
	if got := s.SampleRate(); got != 22050 {
		t.Errorf("SampleRate() = %d, want 22050", got)
	}
	if got := s.OperationMode(); got != config.WhiteList {
		t.Errorf("OperationMode() = %s, want whitelist", got)
	}
	if !s.RequireApproval() {
		t.Error("RequireApproval() = false, want true")
	}
	if len(r.events) != 6 {
		t.Errorf("events = %d, want 6", len(r.events))
	}

	if err := s.Set(config.KeyDeviceName, "source.voicecall"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Set(deviceName) error = %v, want ErrReadOnly", err)
	}
	if err := s.Set(config.KeySampleSize, "24"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Set(sampleSize) error = %v, want ErrReadOnly", err)
	}
	if err := s.Set("encoder.bitrate", "1"); !errors.Is(err, config.ErrUnknownKey) {
		t.Errorf("Set(unknown) error = %v, want ErrUnknownKey", err)
	}
	if err := s.Set(config.KeyCompression, "max"); err == nil {
		t.Error("Set(compression, max) expected error")
	}
}
