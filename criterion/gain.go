package criterion

import "github.com/YuminosukeSato/treeml/pkg/errors"

// SecondOrderGain scores a split from the gradient and Hessian sums of its two
// sides:
//
//	0.5·(GL²/(HL+λ) + GR²/(HR+λ) − (GL+GR)²/(HL+HR+λ)) − γ/2
//
// Higher is better; a value <= 0 means the split does not pay for itself.
func SecondOrderGain(gl, hl, gr, hr, lambda, gamma float64) float64 {
	g := gl + gr
	h := hl + hr
	return 0.5*(structureScore(gl, hl, lambda)+structureScore(gr, hr, lambda)-structureScore(g, h, lambda)) - gamma/2
}

// LeafWeight is the optimal leaf output −G/(H+λ) for a node with gradient sum g
// and Hessian sum h.
func LeafWeight(g, h, lambda float64) float64 {
	return -g / (h + lambda + errors.Epsilon)
}

func structureScore(g, h, lambda float64) float64 {
	return g * g / (h + lambda + errors.Epsilon)
}
