package pipeline

import (
	"fmt"

	"github.com/samcharles93/qmlp/internal/quant"
	"github.com/samcharles93/qmlp/internal/tensor"
)

// Result holds the prediction of one integer forward pass together with
// the intermediate tensors. The intermediates are the golden reference
// values the hardware is verified against, so they are retained rather
// than recycled.
type Result struct {
	Prediction int

	// Acc1 is the raw int32 layer-1 accumulator (pre-shift).
	Acc1 []int32
	// Hidden is the int8 hidden vector after shift, clamp and ReLU.
	Hidden []int8
	// Acc2 is the int32 logit vector the argmax ran over.
	Acc2 []int32
}

// QuantizeInput maps a real-valued input vector into int8 at the
// pipeline's input scale.
func (p *Pipeline) QuantizeInput(x []float32) ([]int8, error) {
	if len(x) != p.InputDim() {
		return nil, fmt.Errorf("input length %d does not match input dim %d", len(x), p.InputDim())
	}
	return quant.QuantizeVector(x, p.InputScale), nil
}

// Forward runs the integer-only pipeline over one quantized input:
//
//	acc1 = W1*x + b1            (int32, exact)
//	h1   = relu(clamp(acc1 >> shift1))
//	acc2 = W2*h1 + b2           (int32, kept as logits)
//	pred = argmax(acc2)         (ties: lowest index)
//
// Forward is pure: identical pipeline and input always produce an
// identical Result, and concurrent calls over one Pipeline are safe.
func (p *Pipeline) Forward(x []int8) (*Result, error) {
	if len(x) != p.InputDim() {
		return nil, fmt.Errorf("input length %d does not match input dim %d", len(x), p.InputDim())
	}

	acc1 := make([]int32, p.HiddenDim())
	tensor.MatVecInt32(acc1, &p.L1.W, x, p.L1.B)

	hidden := make([]int8, p.HiddenDim())
	tensor.ShiftClampInt8(hidden, acc1, p.L1.Shift)
	tensor.ReLUInt8(hidden)

	acc2 := make([]int32, p.OutputDim())
	tensor.MatVecInt32(acc2, &p.L2.W, hidden, p.L2.B)

	return &Result{
		Prediction: tensor.ArgMaxInt32(acc2),
		Acc1:       acc1,
		Hidden:     hidden,
		Acc2:       acc2,
	}, nil
}
