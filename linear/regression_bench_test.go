package linear

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// noisyPlane samples y = 1 + Σ (j+1)/2 · x_j with x in [-1, 1) and a little
// uniform noise.
func noisyPlane(n, d int) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(7, 11))
	X := mat.NewDense(n, d, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		target := 1 + 0.05*(rng.Float64()-0.5)
		for j := 0; j < d; j++ {
			x := 2*rng.Float64() - 1
			X.Set(i, j, x)
			target += x * float64(j+1) / 2
		}
		y.Set(i, 0, target)
	}
	return X, y
}

func BenchmarkFit(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		for _, intercept := range []bool{true, false} {
			b.Run(fmt.Sprintf("n=%d/intercept=%t", n, intercept), func(b *testing.B) {
				X, y := noisyPlane(n, 16)
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if err := NewLinearRegression(WithFitIntercept(intercept)).Fit(X, y); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkPredict(b *testing.B) {
	X, y := noisyPlane(5000, 16)
	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := lr.Predict(X); err != nil {
			b.Fatal(err)
		}
	}
}
