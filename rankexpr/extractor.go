package rankexpr

// DottedExtractor is a parser.SymbolExtractor that recognizes dotted
// qualified names, e.g. "attribute.weight.boost". The parser core calls a
// SymbolExtractor with the cursor rewound to the very start of the
// identifier it could not resolve on its own, so DottedExtractor re-reads
// the base identifier itself before looking for ".ident" continuations -
// once a SymbolExtractor is registered it is responsible for recognizing
// every symbol, plain identifiers included, not just the extended syntax.
type DottedExtractor struct{}

// ExtractSymbol implements parser.SymbolExtractor.
func (DottedExtractor) ExtractSymbol(source string, pos, end int) (newPos int, symbol string) {
	start := pos
	i := pos
	if i >= end || !isDottedIdentChar(source[i], true) {
		return pos, ""
	}
	for i < end && isDottedIdentChar(source[i], false) {
		i++
	}
	for i < end && source[i] == '.' {
		segStart := i
		i++
		first := true
		for i < end && isDottedIdentChar(source[i], first) {
			i++
			first = false
		}
		if i == segStart+1 {
			// "." with no identifier after it; stop before consuming it.
			i = segStart
			break
		}
	}
	return i, source[start:i]
}

// isDottedIdentChar reports whether b may appear in a plain identifier or
// one of its dotted segments. '$' is a continuation character only, never
// a leading one, matching parser.isIdentChar's grammar.
func isDottedIdentChar(b byte, first bool) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '@' || (b == '$' && !first)
}
