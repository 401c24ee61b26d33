package parser

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// "$artifacts:Name".field → "$artifacts:Name.field"
	artifactRefPattern = regexp.MustCompile(`"\$artifacts:([^"]+)"\.(\w+)`)

	// - assert: "$sym" == 123
	assertShorthandPattern = regexp.MustCompile(
		`^(\s*-\s*)(assert|check|verify|expect):\s*("[^"]+"|'[^']+')\s*(==|!=|>=|<=|>|<)\s*([^\s#]+)\s*(#.*)?$`)

	topLevelKeyPattern = regexp.MustCompile(`^(name|description|roles|contracts|steps|timeout|gas_limit)\s*:`)
)

// Normalize repairs common authoring mistakes in scenario YAML before it is
// decoded. It never fails and Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	var q quoteState
	for _, line := range lines {
		line = q.quoteSymbols(line)
		line = artifactRefPattern.ReplaceAllString(line, `"$$artifacts:${1}.${2}"`)
		out = append(out, expandAssertShorthand(line)...)
	}

	return strings.Join(repairIndentation(out), "\n")
}

// quoteState tracks quoted scalars, which may span lines.
type quoteState struct {
	quote byte
}

// quoteSymbols wraps $name and ${name} references outside quoted scalars in
// double quotes. Inside quotes ${name} is reduced to $name.
func (q *quoteState) quoteSymbols(line string) string {
	var b strings.Builder
	b.Grow(len(line) + 8)

	var last byte // last non-blank byte seen outside quotes on this line
	for i := 0; i < len(line); {
		c := line[i]

		if q.quote != 0 {
			switch {
			case q.quote == '"' && c == '\\' && i+1 < len(line):
				b.WriteByte(c)
				b.WriteByte(line[i+1])
				i += 2
				continue
			case q.quote == '\'' && c == '\'' && i+1 < len(line) && line[i+1] == '\'':
				b.WriteString("''")
				i += 2
				continue
			case c == q.quote:
				q.quote = 0
				last = c
			case c == '$' && i+1 < len(line) && line[i+1] == '{':
				if end := strings.IndexByte(line[i:], '}'); end > 2 {
					b.WriteString("$" + strings.TrimSpace(line[i+2:i+end]))
					i += end + 1
					continue
				}
			}
			b.WriteByte(c)
			i++
			continue
		}

		switch {
		case c == '#' && (i == 0 || line[i-1] == ' ' || line[i-1] == '\t'):
			b.WriteString(line[i:])
			return b.String()
		case (c == '"' || c == '\'') && opensScalar(last):
			q.quote = c
		case c == '"':
			// "$sym" inside plain text, as written by a previous pass
			if token, n := symbolAt(line[i+1:]); n > 0 && i+1+n < len(line) && line[i+1+n] == '"' {
				b.WriteString(`"$` + token + `"`)
				i += n + 2
				last = '"'
				continue
			}
		case c == '$':
			if token, n := symbolAt(line[i:]); n > 0 {
				b.WriteString(`"$` + token + `"`)
				i += n
				last = '"'
				continue
			}
		}

		b.WriteByte(c)
		if c != ' ' && c != '\t' {
			last = c
		}
		i++
	}
	return b.String()
}

// opensScalar reports whether a quote following last starts a quoted scalar.
func opensScalar(last byte) bool {
	switch last {
	case 0, ':', '-', '[', '{', ',', '?':
		return true
	}
	return false
}

// symbolAt returns the symbol name of a reference at the start of s and the
// number of bytes it spans.
func symbolAt(s string) (string, int) {
	if len(s) < 2 || s[0] != '$' {
		return "", 0
	}
	if s[1] == '{' {
		end := strings.IndexByte(s, '}')
		if end <= 2 {
			return "", 0
		}
		token := strings.TrimSpace(s[2:end])
		if token == "" {
			return "", 0
		}
		return token, end + 1
	}
	if strings.HasPrefix(s, "$artifacts:") {
		n := len("$artifacts:")
		for n < len(s) && (isWordByte(s[n]) || s[n] == '.') {
			n++
		}
		if n == len("$artifacts:") {
			return "", 0
		}
		return s[1:n], n
	}
	if !isIdentStart(s[1]) {
		return "", 0
	}
	n := 2
	for n < len(s) && isWordByte(s[n]) {
		n++
	}
	return s[1:n], n
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordByte(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// expandAssertShorthand rewrites `- assert: "$x" == 1` into an explicit
// value/expect mapping.
func expandAssertShorthand(line string) []string {
	m := assertShorthandPattern.FindStringSubmatch(line)
	if m == nil {
		return []string{line}
	}

	prefix, key, value, op, operand := m[1], m[2], m[3], m[4], m[5]
	operand = strings.Trim(operand, `"'`)
	inner := strings.Repeat(" ", len(prefix)+2)

	return []string{
		fmt.Sprintf("%s%s:", prefix, key),
		fmt.Sprintf("%svalue: %s", inner, value),
		fmt.Sprintf("%sexpect: %q", inner, op+operand),
	}
}

// repairIndentation indents column-zero lines that follow a nested line
// ending in ':' and are not themselves top-level keys or list items.
func repairIndentation(lines []string) []string {
	for i := 0; i < len(lines); i++ {
		content := strings.TrimSpace(lines[i])
		if !strings.HasSuffix(content, ":") || strings.HasPrefix(content, "#") {
			continue
		}

		indent := leadingSpaces(lines[i])
		isItem := strings.HasPrefix(content, "-")
		if indent == 0 && !isItem {
			continue
		}

		keyCol := indent
		if isItem {
			keyCol = indent + len(content) - len(strings.TrimLeft(strings.TrimPrefix(content, "-"), " "))
		}
		pad := strings.Repeat(" ", keyCol+2)

		for j := i + 1; j < len(lines); j++ {
			next := lines[j]
			if strings.TrimSpace(next) == "" {
				continue
			}
			if !needsIndent(next) {
				break
			}
			lines[j] = pad + next
		}
	}
	return lines
}

func needsIndent(line string) bool {
	if leadingSpaces(line) > 0 {
		return false
	}
	if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "#") {
		return false
	}
	return !topLevelKeyPattern.MatchString(line)
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}
