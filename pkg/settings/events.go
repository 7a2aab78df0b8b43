package settings

import (
	"slices"

	"github.com/lvim-tech/callrecorder/pkg/config"
)

// Field names the setting an Event is about.
type Field string

const (
	FieldInputDevice     Field = "inputDevice"
	FieldOutputLocation  Field = config.KeyOutputLocation
	FieldOperationMode   Field = config.KeyOperationMode
	FieldSampleRate      Field = config.KeySampleRate
	FieldSampleSize      Field = config.KeySampleSize
	FieldCompression     Field = config.KeyCompression
	FieldLocale          Field = config.KeyLocale
	FieldLimitStorage    Field = config.KeyLimitStorage
	FieldMaxStorageAge   Field = config.KeyMaxStorageAge
	FieldMaxStorageSize  Field = config.KeyMaxStorageSize
	FieldRequireApproval Field = config.KeyRequireApproval

	// SettingsChanged follows every batch of field events.
	SettingsChanged Field = "settings"
)

// Event is delivered to listeners when a setting changes. Value holds the new
// value with its Go type (string, int, bool, config.OperationMode or
// audio.Device); it is nil for SettingsChanged.
type Event struct {
	Field Field
	Value any
}

// Listener receives events synchronously on the goroutine that changed the setting.
type Listener func(Event)

// Subscription identifies a registered listener.
type Subscription int

type subscriber struct {
	id       Subscription
	listener Listener
}

// Subscribe registers l. Listeners are called in subscription order.
func (s *Store) Subscribe(l Listener) Subscription {
	s.nextSubscription++
	id := s.nextSubscription
	s.subscribers = append(s.subscribers, subscriber{id: id, listener: l})
	return id
}

// Unsubscribe removes the listener registered under id. Unknown ids are ignored.
func (s *Store) Unsubscribe(id Subscription) {
	s.subscribers = slices.DeleteFunc(s.subscribers, func(sub subscriber) bool {
		return sub.id == id
	})
}

// emit delivers e to the listeners registered when emit is called. Listeners
// may subscribe, unsubscribe or change settings while being called.
func (s *Store) emit(e Event) {
	for _, sub := range slices.Clone(s.subscribers) {
		sub.listener(e)
	}
}
