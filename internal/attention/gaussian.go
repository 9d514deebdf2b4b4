package attention

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Gaussian is a multivariate normal position policy with switchable
// covariance. It caches the inverse and determinant of the active covariance
// and the Cholesky factor used for sampling.
//
// Example:
//
//	g, err := attention.NewGaussian(
//	    mat.NewDense(1, 1, []float64{0.01}),
//	    mat.NewDense(1, 1, []float64{0.09}),
//	)
//	ctrl, err := attention.NewController(g, g.Small(), g.Large())
type Gaussian struct {
	small *mat.Dense
	large *mat.Dense

	cov  *mat.Dense
	inv  *mat.Dense
	det  float64
	chol mat.Cholesky
}

// NewGaussian creates a policy with the small covariance active.
func NewGaussian(small, large *mat.Dense) (*Gaussian, error) {
	if small == nil || large == nil {
		return nil, ErrNoMatrices
	}
	sr, _ := small.Dims()
	lr, _ := large.Dims()
	if sr != lr {
		return nil, fmt.Errorf("%w: small is %d-dimensional, large is %d-dimensional", ErrNotSquare, sr, lr)
	}

	g := &Gaussian{small: small, large: large}
	if _, _, err := g.SetCovariance(small); err != nil {
		return nil, err
	}
	return g, nil
}

// Small returns the exploitation covariance.
func (g *Gaussian) Small() mat.Matrix { return g.small }

// Large returns the exploration covariance.
func (g *Gaussian) Large() mat.Matrix { return g.large }

// Dim returns the dimensionality of the position space.
func (g *Gaussian) Dim() int {
	r, _ := g.cov.Dims()
	return r
}

// Covariance returns the active covariance.
func (g *Gaussian) Covariance() mat.Matrix { return g.cov }

// Inverse returns the inverse of the active covariance.
func (g *Gaussian) Inverse() mat.Matrix { return g.inv }

// Determinant returns the determinant of the active covariance.
func (g *Gaussian) Determinant() float64 { return g.det }

// SetCovariance makes cov the active covariance and recomputes its inverse,
// determinant and Cholesky factor. On error the previous state is kept.
func (g *Gaussian) SetCovariance(cov mat.Matrix) (*mat.Dense, float64, error) {
	r, c := cov.Dims()
	if r != c {
		return nil, 0, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
	}
	if g.cov != nil {
		if n := g.Dim(); n != r {
			return nil, 0, fmt.Errorf("%w: expected %dx%d, got %dx%d", ErrNotSquare, n, n, r, c)
		}
	}

	var inv mat.Dense
	if err := inv.Inverse(cov); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	sym := mat.NewSymDense(r, nil)
	for i := range r {
		for j := i; j < r; j++ {
			sym.SetSym(i, j, cov.At(i, j))
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, 0, fmt.Errorf("%w: not positive definite", ErrSingular)
	}

	g.cov = mat.DenseCopyOf(cov)
	g.inv = &inv
	g.det = mat.Det(cov)
	g.chol = chol
	return g.inv, g.det, nil
}

// Sample draws a position from N(mean, Σ).
func (g *Gaussian) Sample(mean []float64, rng *rand.Rand) []float64 {
	n := len(mean)
	z := mat.NewVecDense(n, nil)
	for i := range n {
		z.SetVec(i, rng.NormFloat64())
	}

	var lower mat.TriDense
	g.chol.LTo(&lower)

	x := mat.NewVecDense(n, nil)
	x.MulVec(&lower, z)
	x.AddVec(x, mat.NewVecDense(n, mean))
	return x.RawVector().Data
}

// Score returns Σ⁻¹(x − mean), the gradient of the log density with respect
// to the mean.
func (g *Gaussian) Score(x, mean []float64) []float64 {
	n := len(mean)
	d := mat.NewVecDense(n, nil)
	d.SubVec(mat.NewVecDense(n, x), mat.NewVecDense(n, mean))

	out := mat.NewVecDense(n, nil)
	out.MulVec(g.inv, d)
	return out.RawVector().Data
}

// LogDensity evaluates log N(x; mean, Σ).
func (g *Gaussian) LogDensity(x, mean []float64) float64 {
	n := len(mean)
	d := mat.NewVecDense(n, nil)
	d.SubVec(mat.NewVecDense(n, x), mat.NewVecDense(n, mean))

	maha := mat.Inner(d, g.inv, d)
	return -0.5*maha - 0.5*math.Log(g.det) - 0.5*float64(n)*math.Log(2*math.Pi)
}
