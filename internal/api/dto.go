package api

// InferRequest carries one inference input. Exactly one of Input
// (already-quantized int8 values) or RealInput (real values quantized at
// the pipeline's input scale before inference) must be set.
type InferRequest struct {
	Input     []int8    `json:"input,omitempty"`
	RealInput []float32 `json:"real_input,omitempty"`

	// IncludeIntermediates adds the golden intermediate tensors to the
	// response for hardware debugging.
	IncludeIntermediates bool `json:"include_intermediates,omitempty"`
}

// InferResponse is the result of one integer forward pass.
type InferResponse struct {
	ID         string  `json:"id"`
	Prediction int     `json:"prediction"`
	Logits     []int32 `json:"logits"`

	QuantizedInput []int8  `json:"quantized_input,omitempty"`
	Acc1           []int32 `json:"acc1,omitempty"`
	Hidden         []int8  `json:"hidden,omitempty"`
}

// APIError is the error body returned by every failing endpoint.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
