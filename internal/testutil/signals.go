package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates amplitude*sin(2*pi*freqHz*i/sampleRate).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// SineAt evaluates amplitude*sin(2*pi*freqHz*t) at every timestamp.
func SineAt(times []float64, freqHz, amplitude float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = amplitude * math.Sin(2*math.Pi*freqHz*t)
	}
	return out
}

// UniformTimes returns n timestamps starting at t0 spaced by 1/sampleRate.
func UniformTimes(n int, sampleRate, t0 float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = t0 + float64(i)/sampleRate
	}
	return out
}

// JitteredTimes returns n strictly increasing timestamps whose spacing
// deviates from 1/sampleRate by up to jitter (a fraction of the period).
func JitteredTimes(seed int64, n int, sampleRate, jitter float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	period := 1 / sampleRate
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		out[i] = out[i-1] + period*(1+(rng.Float64()*2-1)*jitter)
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
