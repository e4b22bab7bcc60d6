// Package audio is the audio subsystem. Devices are reached through
// PortAudio when built with the portaudio tag:
//
//	debian:	sudo apt-get install portaudio19-dev
//	macos:	brew install portaudio
//
// Without the tag every call reports ErrUnavailable, so the rest of the
// program builds without the C library.
package audio

import "errors"

// ErrUnavailable is returned when audio support was not compiled in.
var ErrUnavailable = errors.New("audio support not compiled in (build with -tags portaudio)")

// Device describes an audio endpoint.
type Device struct {
	Index             int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	DefaultInput      bool
	DefaultOutput     bool
}
