package vcf

import "fmt"

// Missing is the genotype code stored for an unresolved call ("./.").
const Missing int8 = -9

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// DecodeGenotype converts a GT token into the sum of its two allele
// indices. Only bytes 0 and 2 are read; byte 1 is the separator ('/' or '|')
// and anything after byte 2 must begin a new FORMAT subfield.
//
// A token starting with '.' is Missing. Alleles must be single digits.
func DecodeGenotype(tok string) (int8, error) {
	code, reason := decodeGenotype(tok)
	if reason != "" {
		return 0, fmt.Errorf("%w: %s", ErrMalformedToken, reason)
	}
	return code, nil
}

// decodeGenotype returns a non-empty reason when tok cannot be decoded.
func decodeGenotype(tok string) (int8, string) {
	if len(tok) == 0 {
		return 0, "empty genotype"
	}
	if tok[0] == '.' {
		return Missing, ""
	}
	if len(tok) < 3 {
		return 0, fmt.Sprintf("genotype %q is shorter than 3 characters", tok)
	}
	a, b := tok[0], tok[2]
	if !isDigit(a) || !isDigit(b) {
		return 0, fmt.Sprintf("genotype %q has a non-digit allele", tok)
	}
	if len(tok) > 3 && isDigit(tok[3]) {
		return 0, fmt.Sprintf("genotype %q has a multi-digit allele", tok)
	}
	return int8(a-'0') + int8(b-'0'), ""
}
