package spectrum

// Summary holds descriptive statistics of a single-sided amplitude spectrum.
type Summary struct {
	BinCount int
	DC       float64 // bin 0 amplitude
	// Peak is the largest amplitude above DC, at PeakBin / PeakFreq.
	Peak     float64
	PeakBin  int
	PeakFreq float64
	Centroid float64 // amplitude-weighted mean frequency (Hz)
	Rolloff  float64 // frequency below which 85% of the energy lies (Hz)
	Energy   float64 // sum of squared amplitudes
}

const rolloffFraction = 0.85

// Summarize computes a Summary of s. Bin 0 is reported as DC and excluded
// from the peak search when other bins exist.
func Summarize(s Spectrum) Summary {
	n := len(s.Amplitude)
	if n == 0 {
		return Summary{}
	}

	sum := Summary{BinCount: n, DC: s.Amplitude[0]}

	first := 0
	if n > 1 {
		first = 1
	}

	sum.PeakBin = first
	weighted, total := 0.0, 0.0

	for i, a := range s.Amplitude {
		sum.Energy += a * a
		weighted += a * binFreq(s, i)
		total += a

		if i >= first && a > sum.Peak {
			sum.Peak = a
			sum.PeakBin = i
		}
	}

	sum.PeakFreq = binFreq(s, sum.PeakBin)

	if total > 0 {
		sum.Centroid = weighted / total
	}

	if sum.Energy > 0 {
		threshold := rolloffFraction * sum.Energy
		acc := 0.0

		for i, a := range s.Amplitude {
			acc += a * a
			if acc >= threshold {
				sum.Rolloff = binFreq(s, i)
				break
			}
		}
	}

	return sum
}
