package sphere

import (
	"testing"

	"github.com/san-kum/particlesim/internal/dynamo"
)

func BenchmarkStep(b *testing.B) {
	for _, n := range []int{8, 64, 256} {
		b.Run(benchName(n), func(b *testing.B) {
			s, _ := NewSpace(dynamo.DefaultFieldConfig())
			for i := 0; i < n; i++ {
				s.AddElectron()
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := s.Step(0.01, dynamo.DefaultForceConstant); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func benchName(n int) string {
	switch {
	case n < 10:
		return "small"
	case n < 100:
		return "medium"
	default:
		return "large"
	}
}
