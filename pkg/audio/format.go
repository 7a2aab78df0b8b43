// Package audio describes capture devices and the formats they accept.
// Devices are enumerated through an Enumerator; PulseEnumerator asks the
// PulseAudio server with pactl.
package audio

import "fmt"

// CodecPCM is the only codec recordings are captured with.
const CodecPCM = "audio/pcm"

// ByteOrder of multi-byte samples.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

func (b ByteOrder) String() string {
	if b == BigEndian {
		return "big-endian"
	}
	return "little-endian"
}

// SampleType is the numeric representation of a sample.
type SampleType int

const (
	SignedInt SampleType = iota
	UnsignedInt
	Float
)

func (s SampleType) String() string {
	switch s {
	case UnsignedInt:
		return "unsigned"
	case Float:
		return "float"
	default:
		return "signed"
	}
}

// Format is a capture format.
type Format struct {
	SampleRate   int
	SampleSize   int
	ChannelCount int
	ByteOrder    ByteOrder
	SampleType   SampleType
	Codec        string
}

// String renders the format like "signed 16bit 1ch 32000Hz little-endian audio/pcm".
func (f Format) String() string {
	return fmt.Sprintf("%s %dbit %dch %dHz %s %s",
		f.SampleType, f.SampleSize, f.ChannelCount, f.SampleRate, f.ByteOrder, f.Codec)
}
