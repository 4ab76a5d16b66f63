package vcf

// LineKind is the class of a raw VCF line.
type LineKind int

const (
	LineData         LineKind = iota // variant record
	LineMeta                         // "##" meta-information, ignored
	LineColumnHeader                 // "#CHROM ..." column header
)

func (k LineKind) String() string {
	switch k {
	case LineMeta:
		return "meta"
	case LineColumnHeader:
		return "column-header"
	default:
		return "data"
	}
}

// Classify looks at the first two characters of a line.
func Classify(line string) LineKind {
	if len(line) == 0 || line[0] != '#' {
		return LineData
	}
	if len(line) > 1 && line[1] == '#' {
		return LineMeta
	}
	return LineColumnHeader
}
