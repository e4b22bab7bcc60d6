//go:build !portaudio

package audio

func Init() error { return ErrUnavailable }

func Terminate() error { return nil }

func Devices() ([]Device, error) { return nil, ErrUnavailable }
