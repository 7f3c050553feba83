// memdiff compares two artifact directories — typically a golden export
// against a dump produced by the hardware toolchain — and reports every
// value that differs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/samcharles93/qmlp/internal/memfile"
	"github.com/samcharles93/qmlp/internal/tensor"
)

type diffStats struct {
	Mismatches int
	MaxAbs     int64
	FirstAt    string
}

func main() {
	var (
		goldenDir    string
		candidateDir string
		showAll      bool
		limit        int
	)

	flag.StringVar(&goldenDir, "golden", "", "path to golden artifact directory")
	flag.StringVar(&candidateDir, "candidate", "", "path to candidate artifact directory")
	flag.BoolVar(&showAll, "show-all", false, "print every mismatching element")
	flag.IntVar(&limit, "limit", 10, "max mismatches printed per tensor (with -show-all)")
	flag.Parse()

	if goldenDir == "" || candidateDir == "" {
		fmt.Fprintln(os.Stderr, "usage: memdiff -golden DIR -candidate DIR")
		os.Exit(2)
	}

	golden, err := memfile.Load(goldenDir)
	if err != nil {
		fatalf("load golden: %v", err)
	}
	candidate, err := memfile.Load(candidateDir)
	if err != nil {
		fatalf("load candidate: %v", err)
	}

	clean := true
	clean = diffQMat("W1", &golden.W1, &candidate.W1, showAll, limit) && clean
	clean = diffInt32("b1", golden.B1, candidate.B1, showAll, limit) && clean
	clean = diffQMat("W2", &golden.W2, &candidate.W2, showAll, limit) && clean
	clean = diffInt32("b2", golden.B2, candidate.B2, showAll, limit) && clean
	clean = diffInt8("sample_input", golden.Sample, candidate.Sample, showAll, limit) && clean

	clean = diffScalar("shift1", int64(golden.Shift1), int64(candidate.Shift1)) && clean
	clean = diffScalar("shift2", int64(golden.Shift2), int64(candidate.Shift2)) && clean
	clean = diffFloat("scale_x", golden.ScaleX, candidate.ScaleX) && clean
	clean = diffFloat("scale_w1", golden.ScaleW1, candidate.ScaleW1) && clean
	clean = diffFloat("scale_w2", golden.ScaleW2, candidate.ScaleW2) && clean
	clean = diffScalar("sample_label", int64(golden.SampleLabel), int64(candidate.SampleLabel)) && clean
	clean = diffScalar("golden_pred", int64(golden.GoldenPred), int64(candidate.GoldenPred)) && clean

	if !clean {
		os.Exit(1)
	}
	fmt.Println("artifact directories match")
}

func diffQMat(name string, a, b *tensor.QMat, showAll bool, limit int) bool {
	if a.R != b.R || a.C != b.C {
		fmt.Printf("%s: shape mismatch [%d x %d] vs [%d x %d]\n", name, a.R, a.C, b.R, b.C)
		return false
	}
	var st diffStats
	shown := 0
	for i := range a.Data {
		if a.Data[i] == b.Data[i] {
			continue
		}
		recordDiff(&st, fmt.Sprintf("%s[%d][%d]", name, i/a.C, i%a.C),
			int64(a.Data[i]), int64(b.Data[i]))
		if showAll && shown < limit {
			fmt.Printf("  %s[%d][%d]: golden %d, candidate %d\n",
				name, i/a.C, i%a.C, a.Data[i], b.Data[i])
			shown++
		}
	}
	return report(name, len(a.Data), st)
}

func diffInt32(name string, a, b []int32, showAll bool, limit int) bool {
	if len(a) != len(b) {
		fmt.Printf("%s: length mismatch %d vs %d\n", name, len(a), len(b))
		return false
	}
	var st diffStats
	shown := 0
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		recordDiff(&st, fmt.Sprintf("%s[%d]", name, i), int64(a[i]), int64(b[i]))
		if showAll && shown < limit {
			fmt.Printf("  %s[%d]: golden %d, candidate %d\n", name, i, a[i], b[i])
			shown++
		}
	}
	return report(name, len(a), st)
}

func diffInt8(name string, a, b []int8, showAll bool, limit int) bool {
	if len(a) != len(b) {
		fmt.Printf("%s: length mismatch %d vs %d\n", name, len(a), len(b))
		return false
	}
	var st diffStats
	shown := 0
	for i := range a {
		if a[i] == b[i] {
			continue
		}
		recordDiff(&st, fmt.Sprintf("%s[%d]", name, i), int64(a[i]), int64(b[i]))
		if showAll && shown < limit {
			fmt.Printf("  %s[%d]: golden %d, candidate %d\n", name, i, a[i], b[i])
			shown++
		}
	}
	return report(name, len(a), st)
}

func diffScalar(name string, a, b int64) bool {
	if a == b {
		return true
	}
	fmt.Printf("%s: golden %d, candidate %d\n", name, a, b)
	return false
}

func diffFloat(name string, a, b float64) bool {
	if a == b {
		return true
	}
	fmt.Printf("%s: golden %g, candidate %g\n", name, a, b)
	return false
}

func recordDiff(st *diffStats, at string, a, b int64) {
	st.Mismatches++
	if st.FirstAt == "" {
		st.FirstAt = at
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	if d > st.MaxAbs {
		st.MaxAbs = d
	}
}

func report(name string, total int, st diffStats) bool {
	if st.Mismatches == 0 {
		return true
	}
	fmt.Printf("%s: %d/%d values differ (max abs delta %d, first at %s)\n",
		name, st.Mismatches, total, st.MaxAbs, st.FirstAt)
	return false
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
