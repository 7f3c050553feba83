package tensor

// QMat represents a dense row-major matrix of int8 values, the storage
// format for symmetrically quantized weights. One row corresponds to one
// output neuron.
type QMat struct {
	R, C int
	Data []int8
}

// NewQMat allocates a zero-initialised int8 matrix with the given shape.
func NewQMat(r, c int) QMat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	return QMat{
		R:    r,
		C:    c,
		Data: make([]int8, r*c),
	}
}

// NewQMatFromData creates an int8 matrix backed by existing data. It
// checks that the data length matches r*c.
func NewQMatFromData(r, c int, data []int8) QMat {
	if r*c != len(data) {
		panic("data length mismatch")
	}
	return QMat{
		R:    r,
		C:    c,
		Data: data,
	}
}

// Row returns the i-th row as a slice aliasing the underlying data.
func (m *QMat) Row(i int) []int8 {
	off := i * m.C
	return m.Data[off : off+m.C]
}
