package memfile

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samcharles93/qmlp/internal/tensor"
)

// ReadInt8Mat parses a row-per-line hex weight file. All rows must have
// the same width; tokens must be exactly two lowercase-safe hex digits.
func ReadInt8Mat(path string) (tensor.QMat, error) {
	lines, err := readLines(path)
	if err != nil {
		return tensor.QMat{}, err
	}
	if len(lines) == 0 {
		return tensor.QMat{}, fmt.Errorf("%s: empty weight file", path)
	}

	cols := len(strings.Fields(lines[0]))
	data := make([]int8, 0, len(lines)*cols)
	for ln, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != cols {
			return tensor.QMat{}, fmt.Errorf("%s:%d: row has %d values, expected %d", path, ln+1, len(fields), cols)
		}
		for _, tok := range fields {
			v, err := parseHexByte(tok)
			if err != nil {
				return tensor.QMat{}, fmt.Errorf("%s:%d: %w", path, ln+1, err)
			}
			data = append(data, v)
		}
	}
	return tensor.NewQMatFromData(len(lines), cols, data), nil
}

// ReadInt32Vec parses a vector of 8-hex-digit words, one per line.
func ReadInt32Vec(path string) ([]int32, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(lines))
	for ln, line := range lines {
		tok := strings.TrimSpace(line)
		if len(tok) != 8 {
			return nil, fmt.Errorf("%s:%d: token %q is not 8 hex digits", path, ln+1, tok)
		}
		u, err := strconv.ParseUint(tok, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, ln+1, err)
		}
		out[ln] = int32(uint32(u))
	}
	return out, nil
}

// ReadInt8Vec parses a vector of 2-hex-digit bytes, one per line.
func ReadInt8Vec(path string) ([]int8, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	out := make([]int8, len(lines))
	for ln, line := range lines {
		v, err := parseHexByte(strings.TrimSpace(line))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, ln+1, err)
		}
		out[ln] = v
	}
	return out, nil
}

// ReadFloatScalar parses a single decimal real from a file.
func ReadFloatScalar(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ReadIntScalar parses a single decimal integer from a file.
func ReadIntScalar(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func parseHexByte(tok string) (int8, error) {
	if len(tok) != 2 {
		return 0, fmt.Errorf("token %q is not 2 hex digits", tok)
	}
	u, err := strconv.ParseUint(tok, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("token %q: %w", tok, err)
	}
	return int8(uint8(u)), nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}
