// ============================================================================
// Diktat - Sprachtranskription
// ============================================================================
//
// Package:     audio
// Description: Linear-interpolation sample rate conversion
// Created:     2026-09-21
// License:     MIT
// ============================================================================

package audio

import "math"

// TargetSampleRate is the rate every transcription engine receives
const TargetSampleRate = 16000

// Resample converts mono samples from sourceRate to targetRate using linear
// interpolation. When the rates are equal the input slice is returned as is.
//
// The output length is round(len(input) * targetRate / sourceRate). Output
// sample i is taken at source position i / ratio; positions past the last
// source sample repeat the nearest lower sample.
func Resample(input []float32, sourceRate, targetRate int) []float32 {
	if sourceRate == targetRate {
		return input
	}
	if len(input) == 0 || sourceRate <= 0 || targetRate <= 0 {
		return []float32{}
	}

	ratio := float64(targetRate) / float64(sourceRate)
	outLen := int(math.Round(float64(len(input)) * ratio))
	out := make([]float32, outLen)

	for i := range out {
		pos := float64(i) / ratio
		i0 := int(math.Floor(pos))
		i1 := int(math.Ceil(pos))
		frac := float32(pos - float64(i0))

		if i0 >= len(input) {
			i0 = len(input) - 1
		}
		if i1 < len(input) {
			out[i] = (1-frac)*input[i0] + frac*input[i1]
		} else {
			out[i] = input[i0]
		}
	}

	return out
}

// Duration returns the length of samples at sampleRate in seconds
func Duration(samples int, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(samples) / float64(sampleRate)
}
