// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     audio
// Description: Microphone capture using PortAudio
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package audio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/msto63/diktat/pkg/core/logging"
)

const (
	// DefaultNativeRate is the default microphone sample rate
	DefaultNativeRate = 48000

	// DefaultFramesPerBuffer is the default buffer size
	DefaultFramesPerBuffer = 512
)

// PortAudioConfig holds configuration for microphone capture
type PortAudioConfig struct {
	SampleRate      int
	FramesPerBuffer int
	DeviceName      string // Name of the input device (empty = default)
	Logger          *logging.Logger
}

// PortAudioSource captures mono audio from a PortAudio input device
type PortAudioSource struct {
	cfg PortAudioConfig
}

// NewPortAudioSource creates a microphone source
func NewPortAudioSource(cfg PortAudioConfig) *PortAudioSource {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultNativeRate
	}
	if cfg.FramesPerBuffer == 0 {
		cfg.FramesPerBuffer = DefaultFramesPerBuffer
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &PortAudioSource{cfg: cfg}
}

// Acquire opens and starts the input stream
func (p *PortAudioSource) Acquire(ctx context.Context) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize PortAudio: %v", ErrResourceDenied, err)
	}

	buffer := make([]float32, p.cfg.FramesPerBuffer)
	pa, err := p.open(buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: failed to open audio stream: %v", ErrResourceDenied, err)
	}

	if err := pa.Start(); err != nil {
		pa.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: failed to start audio stream: %v", ErrResourceDenied, err)
	}

	var (
		running atomic.Bool
		wg      sync.WaitGroup
	)
	running.Store(true)

	stream := NewFrameStream(p.cfg.SampleRate, DefaultFrameQueue, func() error {
		running.Store(false)
		_ = pa.Stop()
		wg.Wait()
		closeErr := pa.Close()
		if err := portaudio.Terminate(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to terminate PortAudio: %w", err)
		}
		return closeErr
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		// The stream stays open after a dead device; Stop keeps what arrived
		if err := pumpFrames(&running, pa.Read, buffer, stream, readBackoff, maxReadErrors); err != nil {
			p.cfg.Logger.Error("Capture device stopped delivering audio", "error", err)
		}
	}()

	return stream, nil
}

// open opens the configured device, falling back to the default input
func (p *PortAudioSource) open(buffer []float32) (*portaudio.Stream, error) {
	if p.cfg.DeviceName != "" && p.cfg.DeviceName != "default" {
		device, err := findDeviceByName(p.cfg.DeviceName)
		if err == nil {
			params := portaudio.StreamParameters{
				Input: portaudio.StreamDeviceParameters{
					Device:   device,
					Channels: 1,
					Latency:  device.DefaultLowInputLatency,
				},
				SampleRate:      float64(p.cfg.SampleRate),
				FramesPerBuffer: p.cfg.FramesPerBuffer,
			}
			return portaudio.OpenStream(params, buffer)
		}
	}

	return portaudio.OpenDefaultStream(1, 0, float64(p.cfg.SampleRate), p.cfg.FramesPerBuffer, buffer)
}

// findDeviceByName finds a PortAudio input device by name
func findDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	for _, dev := range devices {
		if dev.Name == name && dev.MaxInputChannels > 0 {
			return dev, nil
		}
	}

	return nil, fmt.Errorf("device not found: %s", name)
}

// DeviceInfo holds information about an input device
type DeviceInfo struct {
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// ListInputDevices returns the available input devices
func ListInputDevices() ([]DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	var defaultName string
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultName = def.Name
	}

	var inputs []DeviceInfo
	for _, dev := range devices {
		if dev.MaxInputChannels > 0 {
			inputs = append(inputs, DeviceInfo{
				Name:              dev.Name,
				MaxInputChannels:  dev.MaxInputChannels,
				DefaultSampleRate: dev.DefaultSampleRate,
				IsDefault:         dev.Name == defaultName,
			})
		}
	}

	return inputs, nil
}
