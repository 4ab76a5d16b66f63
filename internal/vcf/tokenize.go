package vcf

// isDelimiter reports whether c separates tokens.
func isDelimiter(c byte) bool {
	return c == '\t' || c == '\n' || c == '\r'
}

// Tokenize splits a line on tab, newline and carriage return.
// Interior empty tokens are kept; a trailing empty token is not emitted,
// so "a\tb\t" and "a\tb" both yield two tokens.
func Tokenize(line string) []string {
	toks := make([]string, 0, 16)
	start := 0
	for i := 0; i < len(line); i++ {
		if isDelimiter(line[i]) {
			toks = append(toks, line[start:i])
			start = i + 1
		}
	}
	if start < len(line) {
		toks = append(toks, line[start:])
	}
	return toks
}
