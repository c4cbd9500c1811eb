package descriptor

// normalize rewrites the keyword operators "and" and "or" to "&&" and "||"
// outside of quoted strings. Replacements keep byte offsets stable ("and"
// becomes "&& "), so diagnostic ranges still point into the original text.
func normalize(src string) string {
	b := []byte(src)
	inString := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == '"' && (i == 0 || b[i-1] != '\\'):
			inString = !inString
		case inString:
		case keywordAt(b, i, "and"):
			copy(b[i:], "&& ")
			i += 2
		case keywordAt(b, i, "or"):
			copy(b[i:], "||")
			i++
		}
	}
	return string(b)
}

// keywordAt reports whether word starts at b[i] as a standalone word that is
// not a call name.
func keywordAt(b []byte, i int, word string) bool {
	end := i + len(word)
	if end > len(b) || string(b[i:end]) != word {
		return false
	}
	if i > 0 && isIdent(b[i-1]) {
		return false
	}
	if end < len(b) && (isIdent(b[end]) || b[end] == '(') {
		return false
	}
	return true
}

func isIdent(c byte) bool {
	return c == '_' || c == '-' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
