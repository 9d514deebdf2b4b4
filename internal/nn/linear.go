package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/glimpse/internal/tensor"
	"gonum.org/v1/gonum/mat"
)

// Linear implements a fully connected layer for a single example.
//
// Performs the transformation: y = W x + b
// where:
//   - x has length in_features
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
//
// Example:
//
//	layer, _ := nn.NewLinear(5, 2, rng)
//	y, _ := layer.Forward(x)
//	gradW, gradB, gradX, _ := layer.Backward(x, dy)
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]
}

// NewLinear creates a new Linear layer.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	w, err := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, rng)
	if err != nil {
		return nil, fmt.Errorf("linear weight: %w", err)
	}
	b, err := tensor.Zeros(tensor.Shape{outFeatures})
	if err != nil {
		return nil, fmt.Errorf("linear bias: %w", err)
	}
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", w),
		bias:        NewParameter("bias", b),
	}, nil
}

func (l *Linear) weightMatrix() *mat.Dense {
	return mat.NewDense(l.outFeatures, l.inFeatures, l.weight.Tensor().Data())
}

func (l *Linear) checkInput(x []float64) error {
	if len(x) != l.inFeatures {
		return fmt.Errorf("linear: expected %d input features, got %d: %w", l.inFeatures, len(x), tensor.ErrShapeMismatch)
	}
	return nil
}

// Forward computes W x + b.
func (l *Linear) Forward(x []float64) ([]float64, error) {
	if err := l.checkInput(x); err != nil {
		return nil, err
	}
	y := mat.NewVecDense(l.outFeatures, nil)
	y.MulVec(l.weightMatrix(), mat.NewVecDense(l.inFeatures, x))
	y.AddVec(y, mat.NewVecDense(l.outFeatures, l.bias.Tensor().Data()))
	return y.RawVector().Data, nil
}

// Backward returns the gradients of the loss with respect to the weight, the
// bias and the input, given the input x and the output gradient dy.
func (l *Linear) Backward(x, dy []float64) (gradW, gradB *tensor.Tensor, dx []float64, err error) {
	if err := l.checkInput(x); err != nil {
		return nil, nil, nil, err
	}
	if len(dy) != l.outFeatures {
		return nil, nil, nil, fmt.Errorf("linear: expected %d output gradients, got %d: %w", l.outFeatures, len(dy), tensor.ErrShapeMismatch)
	}

	dyVec := mat.NewVecDense(l.outFeatures, dy)
	gw := mat.NewDense(l.outFeatures, l.inFeatures, nil)
	gw.Outer(1, dyVec, mat.NewVecDense(l.inFeatures, x))

	dxVec := mat.NewVecDense(l.inFeatures, nil)
	dxVec.MulVec(l.weightMatrix().T(), dyVec)

	gradW, err = tensor.FromSlice(gw.RawMatrix().Data, l.weight.Shape())
	if err != nil {
		return nil, nil, nil, err
	}
	gradB, err = tensor.FromSlice(append([]float64(nil), dy...), l.bias.Shape())
	if err != nil {
		return nil, nil, nil, err
	}
	return gradW, gradB, dxVec.RawVector().Data, nil
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
