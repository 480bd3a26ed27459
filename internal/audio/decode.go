// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     audio
// Description: Upload decoding for WAV, FLAC and MP3
// Created:     2026-09-22
// License:     MIT
// ============================================================================

package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat is returned for audio files that are not WAV, FLAC or MP3
var ErrUnsupportedFormat = errors.New("audio: unsupported file format")

// Decoded is a file decoded to mono samples at its own rate
type Decoded struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Decode decodes a WAV, FLAC or MP3 file and keeps only the first channel.
// The format is taken from the file name and, failing that, from the header.
func Decode(name string, data []byte) (Decoded, error) {
	format := detectFormat(name, data)

	var (
		s   beep.StreamSeekCloser
		f   beep.Format
		err error
	)
	switch format {
	case "wav":
		s, f, err = wav.Decode(bytes.NewReader(data))
	case "flac":
		s, f, err = flac.Decode(bytes.NewReader(data))
	case "mp3":
		s, f, err = mp3.Decode(io.NopCloser(bytes.NewReader(data)))
	default:
		return Decoded{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return Decoded{}, fmt.Errorf("failed to decode %s: %w", format, err)
	}
	defer s.Close()

	out := Decoded{
		SampleRate: int(f.SampleRate),
		Channels:   f.NumChannels,
	}
	if n := s.Len(); n > 0 {
		out.Samples = make([]float32, 0, n)
	}

	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out.Samples = append(out.Samples, float32(buf[i][0]))
		}
		if !ok {
			break
		}
	}
	if err := s.Err(); err != nil {
		return Decoded{}, fmt.Errorf("failed to decode %s: %w", format, err)
	}

	return out, nil
}

func detectFormat(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".wave":
		return "wav"
	case ".flac":
		return "flac"
	case ".mp3":
		return "mp3"
	}

	switch {
	case bytes.HasPrefix(data, []byte("RIFF")):
		return "wav"
	case bytes.HasPrefix(data, []byte("fLaC")):
		return "flac"
	case bytes.HasPrefix(data, []byte("ID3")):
		return "mp3"
	case len(data) > 1 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "mp3"
	}
	return ""
}
