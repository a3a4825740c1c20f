package spectrum

// NextFastLen returns the smallest 5-smooth integer (2^a 3^b 5^c) that is
// greater than or equal to n. Values n <= 6 are returned unchanged.
func NextFastLen(n int) int {
	if n <= 6 {
		return n
	}

	if isFiveSmooth(n) {
		return n
	}

	best := 1
	for best < n {
		best <<= 1
	}

	for p5 := 1; p5 < best; p5 *= 5 {
		for p35 := p5; p35 < best; p35 *= 3 {
			// smallest power of two lifting p35 to at least n
			q := (n + p35 - 1) / p35
			p2 := 1
			for p2 < q {
				p2 <<= 1
			}

			if c := p2 * p35; c < best {
				best = c
				if best == n {
					return n
				}
			}
		}
	}

	return best
}

func isFiveSmooth(n int) bool {
	if n <= 0 {
		return false
	}

	for _, p := range [...]int{2, 3, 5} {
		for n%p == 0 {
			n /= p
		}
	}

	return n == 1
}

// FFTShift returns a copy of x rotated so that the zero-frequency bin sits at
// index len(x)/2.
func FFTShift[T any](x []T) []T {
	n := len(x)
	out := make([]T, n)
	h := n / 2
	copy(out, x[n-h:])
	copy(out[h:], x[:n-h])

	return out
}

// FFTFreq returns the bin frequencies of an n-point transform in cycles per
// sample, in transform order: 0, 1/n, ..., then the negative frequencies.
func FFTFreq(n int) []float64 {
	if n <= 0 {
		return nil
	}

	out := make([]float64, n)
	step := 1.0 / float64(n)
	pos := (n-1)/2 + 1

	for i := range pos {
		out[i] = float64(i) * step
	}

	for i := pos; i < n; i++ {
		out[i] = float64(i-n) * step
	}

	return out
}
