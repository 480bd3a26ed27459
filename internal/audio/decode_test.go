package audio

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestWAVBytes_Header(t *testing.T) {
	data, err := WAVBytes([]float32{0, 0.5, -0.5, 2}, 16000)
	if err != nil {
		t.Fatalf("WAVBytes() error = %v", err)
	}

	if len(data) != 44+8 {
		t.Fatalf("len = %d, want 52", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" || string(data[36:40]) != "data" {
		t.Errorf("unexpected header %q", data[:44])
	}
	// clamped full-scale sample
	last := int16(uint16(data[50]) | uint16(data[51])<<8)
	if last != 32767 {
		t.Errorf("last sample = %d, want 32767", last)
	}
}

func TestDecode_WAV(t *testing.T) {
	in := make([]float32, 4800)
	for i := range in {
		in[i] = float32(math.Sin(float64(i) / 10))
	}
	data, err := WAVBytes(in, 48000)
	if err != nil {
		t.Fatalf("WAVBytes() error = %v", err)
	}

	dec, err := Decode("upload.wav", data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if dec.SampleRate != 48000 {
		t.Errorf("SampleRate = %d, want 48000", dec.SampleRate)
	}
	if len(dec.Samples) != len(in) {
		t.Fatalf("len(Samples) = %d, want %d", len(dec.Samples), len(in))
	}
	for i := 0; i < len(in); i += 500 {
		if math.Abs(float64(dec.Samples[i]-in[i])) > 1e-3 {
			t.Errorf("Samples[%d] = %v, want %v", i, dec.Samples[i], in[i])
		}
	}
}

func TestDecode_SniffsHeader(t *testing.T) {
	data, _ := WAVBytes([]float32{0.1, 0.2}, 16000)

	dec, err := Decode("recording", data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(dec.Samples) != 2 {
		t.Errorf("len(Samples) = %d, want 2", len(dec.Samples))
	}
}

func TestDecode_Unsupported(t *testing.T) {
	_, err := Decode("notes.txt", []byte("hello world"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecode_Corrupt(t *testing.T) {
	if _, err := Decode("broken.wav", []byte("RIFF\x00\x00")); err == nil {
		t.Error("Decode() expected error for truncated file")
	}
}

func TestWriteWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := WriteWAVFile(path, []float32{0, 0}, 16000); err != nil {
		t.Fatalf("WriteWAVFile() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() != 48 {
		t.Errorf("size = %d, want 48", info.Size())
	}
}

func TestPCM16(t *testing.T) {
	out := PCM16([]float32{-2, 0})
	if len(out) != 4 {
		t.Fatalf("len = %d, want 4", len(out))
	}
	if v := int16(uint16(out[0]) | uint16(out[1])<<8); v != -32767 {
		t.Errorf("first sample = %d, want -32767", v)
	}
}
