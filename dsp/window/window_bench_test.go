package window

import (
	"strconv"
	"testing"
)

func BenchmarkGenerate(b *testing.B) {
	sizes := []int{1024, 14000, 140000}
	for _, n := range sizes {
		b.Run("kaiser/"+strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Generate(TypeKaiser, n)
			}
		})
		b.Run("hann/"+strconv.Itoa(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = Generate(TypeHann, n)
			}
		})
	}
}
