package waveform

import "math"

// Measurements are the automatic measurements of a decoded trace.
type Measurements struct {
	Samples    int
	Mean       float64 // V
	RMS        float64 // V, including DC
	ACRMS      float64 // V, standard deviation around Mean
	Min        float64 // V
	MinTime    float64 // s
	Max        float64 // V
	MaxTime    float64 // s
	PeakToPeak float64 // V
	// CrestFactor is max(|Min|, |Max|) / RMS, or 0 for a zero trace.
	CrestFactor float64
	// Crossings counts passes through Mean in either direction.
	Crossings int
	// Frequency is estimated from the rising Mean crossings, interpolated
	// between samples. It is 0 when fewer than two rising crossings exist.
	Frequency float64 // Hz
}

// Measure computes Measurements of w in two passes over the trace.
func Measure(w Waveform) Measurements {
	n := len(w.Volt)
	if n == 0 {
		return Measurements{}
	}

	m := Measurements{
		Samples: n,
		Min:     w.Volt[0],
		MinTime: w.Time[0],
		Max:     w.Volt[0],
		MaxTime: w.Time[0],
	}

	// Welford mean and second moment.
	var mean, m2, sumSq float64

	for i, v := range w.Volt {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
		sumSq += v * v

		if v > m.Max {
			m.Max, m.MaxTime = v, w.Time[i]
		}

		if v < m.Min {
			m.Min, m.MinTime = v, w.Time[i]
		}
	}

	m.Mean = mean
	m.RMS = math.Sqrt(sumSq / float64(n))
	m.ACRMS = math.Sqrt(m2 / float64(n))
	m.PeakToPeak = m.Max - m.Min

	if m.RMS > 0 {
		m.CrestFactor = math.Max(math.Abs(m.Max), math.Abs(m.Min)) / m.RMS
	}

	m.Crossings, m.Frequency = crossings(w, mean)

	return m
}

// crossings counts passes through level and estimates the frequency from
// the first and last rising pass.
func crossings(w Waveform, level float64) (int, float64) {
	var (
		count        int
		rising       int
		first, last  float64
		prevAboveSet bool
		prevAbove    bool
	)

	for i, v := range w.Volt {
		if v == level {
			continue
		}

		above := v > level
		if prevAboveSet && above != prevAbove {
			count++

			if above {
				t := crossingTime(w, i, level)
				if rising == 0 {
					first = t
				}
				last = t
				rising++
			}
		}

		prevAbove, prevAboveSet = above, true
	}

	if rising < 2 || last <= first {
		return count, 0
	}

	return count, float64(rising-1) / (last - first)
}

// crossingTime interpolates where the trace passes level between sample i
// and the last sample before it that is not on level.
func crossingTime(w Waveform, i int, level float64) float64 {
	j := i - 1
	for j > 0 && w.Volt[j] == level {
		j--
	}

	v0, v1 := w.Volt[j], w.Volt[i]
	t0, t1 := w.Time[j], w.Time[i]

	return t0 + (level-v0)/(v1-v0)*(t1-t0)
}
