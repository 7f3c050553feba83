// Package memfile implements the artifact format consumed by the
// hardware memory-initialization tooling ($readmemh and friends). The
// field widths, lowercase hex casing and one-value-per-line conventions
// are a wire contract: every writer here is matched by a strict reader,
// and a byte written differently breaks the downstream tooling.
package memfile

// Artifact file names within an export directory.
const (
	FileW1     = "W1.mem"
	FileB1     = "b1.mem"
	FileW2     = "W2.mem"
	FileB2     = "b2.mem"
	FileShift1 = "shift1.txt"
	FileShift2 = "shift2.txt"

	FileScaleX  = "scale_x.txt"
	FileScaleW1 = "scale_w1.txt"
	FileScaleW2 = "scale_w2.txt"

	FileSampleInput = "sample_input.mem"
	FileSampleLabel = "sample_label.txt"
	FileGoldenPred  = "golden_pred_int32.txt"

	FileManifest = "manifest.json"
)
