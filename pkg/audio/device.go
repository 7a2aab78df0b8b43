package audio

import "slices"

// Device is an audio input device and the formats it can capture.
type Device struct {
	Name        string
	Description string

	SampleRates   []int
	SampleSizes   []int
	ChannelCounts []int
	ByteOrders    []ByteOrder
	SampleTypes   []SampleType
	Codecs        []string
}

// Capabilities advertised for PulseAudio sources. The server resamples and
// converts, so every source accepts the same set.
var (
	pulseSampleRates   = []int{8000, 11025, 16000, 22050, 32000, 44100, 48000, 96000}
	pulseSampleSizes   = []int{8, 16, 24, 32}
	pulseChannelCounts = []int{1, 2}
	pulseByteOrders    = []ByteOrder{LittleEndian, BigEndian}
	pulseSampleTypes   = []SampleType{SignedInt, UnsignedInt, Float}
	pulseCodecs        = []string{CodecPCM}
)

// NewDevice returns a device with the capabilities of a PulseAudio source.
func NewDevice(name, description string) Device {
	return Device{
		Name:          name,
		Description:   description,
		SampleRates:   slices.Clone(pulseSampleRates),
		SampleSizes:   slices.Clone(pulseSampleSizes),
		ChannelCounts: slices.Clone(pulseChannelCounts),
		ByteOrders:    slices.Clone(pulseByteOrders),
		SampleTypes:   slices.Clone(pulseSampleTypes),
		Codecs:        slices.Clone(pulseCodecs),
	}
}

// IsNull reports whether d designates no device.
func (d Device) IsNull() bool {
	return d.Name == ""
}

// IsFormatSupported reports whether d captures f without conversion.
func (d Device) IsFormatSupported(f Format) bool {
	return slices.Contains(d.SampleRates, f.SampleRate) &&
		slices.Contains(d.SampleSizes, f.SampleSize) &&
		slices.Contains(d.ChannelCounts, f.ChannelCount) &&
		slices.Contains(d.ByteOrders, f.ByteOrder) &&
		slices.Contains(d.SampleTypes, f.SampleType) &&
		slices.Contains(d.Codecs, f.Codec)
}

// NearestFormat returns f with every parameter d does not support replaced by
// the closest one it does. Numeric parameters go to the nearest value (the
// higher one on a tie); the others fall back to the first supported value.
// A device advertising nothing for a parameter leaves it unchanged.
func (d Device) NearestFormat(f Format) Format {
	if d.IsFormatSupported(f) {
		return f
	}
	f.SampleRate = nearest(d.SampleRates, f.SampleRate)
	f.SampleSize = nearest(d.SampleSizes, f.SampleSize)
	f.ChannelCount = nearest(d.ChannelCounts, f.ChannelCount)
	f.ByteOrder = firstOr(d.ByteOrders, f.ByteOrder)
	f.SampleType = firstOr(d.SampleTypes, f.SampleType)
	f.Codec = firstOr(d.Codecs, f.Codec)
	return f
}

func nearest(supported []int, want int) int {
	if len(supported) == 0 {
		return want
	}
	best := supported[0]
	for _, v := range supported[1:] {
		dv, db := distance(v, want), distance(best, want)
		if dv < db || (dv == db && v > best) {
			best = v
		}
	}
	return best
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

func firstOr[T comparable](supported []T, want T) T {
	if len(supported) == 0 || slices.Contains(supported, want) {
		return want
	}
	return supported[0]
}
