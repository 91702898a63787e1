package research

import "strings"

// ExtractBlock returns the trimmed text between <tag> and </tag>. When the
// opening tag exists but the closing tag is missing (the phase was cut off
// by a length or safety limit) the trimmed remainder after the opening tag
// is returned: partial structure is still worth more to later phases than
// nothing. The second return is false only when the opening tag is absent.
func ExtractBlock(text, tag string) (string, bool) {
	open := "<" + tag + ">"
	idx := strings.Index(text, open)
	if idx < 0 {
		return "", false
	}
	rest := text[idx+len(open):]
	if end := strings.Index(rest, "</"+tag+">"); end >= 0 {
		return strings.TrimSpace(rest[:end]), true
	}
	return strings.TrimSpace(rest), true
}

// WrapBlock renders a tagged block the way phases are asked to emit them.
func WrapBlock(tag, body string) string {
	return "<" + tag + ">\n" + body + "\n</" + tag + ">"
}
