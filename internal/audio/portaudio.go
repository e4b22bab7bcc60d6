//go:build portaudio

package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Init initializes PortAudio. Every successful Init must be paired with a
// Terminate.
func Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	return nil
}

// Terminate releases PortAudio.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate portaudio: %w", err)
	}
	return nil
}

// Devices lists the audio endpoints. Init must have been called.
func Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}
	out := make([]Device, 0, len(infos))
	for _, info := range infos {
		d := Device{
			Index:             info.Index,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
		if host := info.HostApi; host != nil {
			d.HostAPI = host.Name
			d.DefaultInput = host.DefaultInputDevice != nil && host.DefaultInputDevice.Index == info.Index
			d.DefaultOutput = host.DefaultOutputDevice != nil && host.DefaultOutputDevice.Index == info.Index
		}
		out = append(out, d)
	}
	return out, nil
}
