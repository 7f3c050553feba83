package memfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/samcharles93/qmlp/internal/tensor"
)

// WriteInt8Mat writes an int8 matrix row-major: one line per output row,
// each value as a two-hex-digit lowercase token (unsigned view of the
// two's-complement byte), space-separated.
func WriteInt8Mat(path string, m *tensor.QMat) error {
	return writeLines(path, func(w *bufio.Writer) error {
		for i := 0; i < m.R; i++ {
			for j, v := range m.Row(i) {
				if j > 0 {
					if err := w.WriteByte(' '); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintf(w, "%02x", uint8(v)); err != nil {
					return err
				}
			}
			if err := w.WriteByte('\n'); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteInt32Vec writes an int32 vector: one 8-hex-digit lowercase token
// per line (unsigned view of the two's-complement word).
func WriteInt32Vec(path string, v []int32) error {
	return writeLines(path, func(w *bufio.Writer) error {
		for _, x := range v {
			if _, err := fmt.Fprintf(w, "%08x\n", uint32(x)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteInt8Vec writes an int8 vector: one two-hex-digit byte per line,
// in element order. Used for the quantized sample input.
func WriteInt8Vec(path string, v []int8) error {
	return writeLines(path, func(w *bufio.Writer) error {
		for _, x := range v {
			if _, err := fmt.Fprintf(w, "%02x\n", uint8(x)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteFloatScalar writes one real scalar as shortest round-trip decimal
// text followed by a newline.
func WriteFloatScalar(path string, v float64) error {
	return os.WriteFile(path, []byte(strconv.FormatFloat(v, 'g', -1, 64)+"\n"), 0o644)
}

// WriteIntScalar writes one integer as plain decimal text followed by a
// newline.
func WriteIntScalar(path string, v int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(v)+"\n"), 0o644)
}

func writeLines(path string, fn func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
