package mmcif

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/pkg/errors"
)

// table holds one mmCIF category's columns, keyed by item name without the
// leading "_category." prefix. Every column in a table has the same length.
type table map[string][]string

// document is the set of categories read from one mmCIF file, keyed by
// category name without the leading underscore.
type document struct {
	categories map[string]table
}

func (d *document) column(category, item string) []string {
	t, ok := d.categories[category]
	if !ok {
		return nil
	}
	return t[item]
}

// tokenize splits raw mmCIF/STAR text into its token stream: bare words,
// quoted strings (quotes stripped) and semicolon-delimited multi-line text
// fields (delimiters stripped, internal newlines kept).
func tokenize(data []byte) ([]string, error) {
	var tokens []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, ";") {
			var b strings.Builder
			b.WriteString(strings.TrimPrefix(line, ";"))
			closed := false
			for sc.Scan() {
				l := sc.Text()
				if l == ";" || strings.HasPrefix(l, "; ") {
					closed = true
					break
				}
				b.WriteByte('\n')
				b.WriteString(l)
			}
			if !closed {
				return nil, errors.New("mmcif: unterminated multi-line text field")
			}
			tokens = append(tokens, b.String())
			continue
		}
		tokens = append(tokens, tokenizeLine(line)...)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "mmcif: scan")
	}
	return tokens, nil
}

// tokenizeLine splits one line into tokens, honouring '#' comments and
// single/double quoted strings (a quote only closes when immediately
// followed by whitespace or end of line, per the STAR grammar).
func tokenizeLine(line string) []string {
	var out []string
	i, n := 0, len(line)
	for i < n {
		for i < n && isSpace(line[i]) {
			i++
		}
		if i >= n {
			break
		}
		if line[i] == '#' {
			break
		}
		if line[i] == '\'' || line[i] == '"' {
			q := line[i]
			start := i + 1
			j := start
			for j < n {
				if line[j] == q && (j+1 == n || isSpace(line[j+1])) {
					break
				}
				j++
			}
			out = append(out, line[start:j])
			i = j + 1
			continue
		}
		start := i
		for i < n && !isSpace(line[i]) {
			i++
		}
		out = append(out, line[start:i])
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}

// parseDocument assembles a token stream into categories, keeping every
// category and item it reads; buildEntry and writeAtomCoord pick out the
// items they consume.
func parseDocument(tokens []string) (*document, error) {
	doc := &document{categories: make(map[string]table)}
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch {
		case tok == "loop_":
			i++
			var category string
			var items []string
			for i < len(tokens) && strings.HasPrefix(tokens[i], "_") {
				cat, item, ok := splitTag(tokens[i])
				if !ok {
					return nil, errors.Errorf("mmcif: malformed tag %q", tokens[i])
				}
				category = cat
				items = append(items, item)
				i++
			}
			if len(items) == 0 {
				return nil, errors.New("mmcif: loop_ with no column tags")
			}
			values := make([][]string, len(items))
			for i < len(tokens) && !strings.HasPrefix(tokens[i], "_") && tokens[i] != "loop_" && !isFrameControl(tokens[i]) {
				for c := range items {
					if i >= len(tokens) {
						return nil, errors.New("mmcif: truncated loop_ row")
					}
					values[c] = append(values[c], tokens[i])
					i++
				}
			}
			t := doc.categories[category]
			if t == nil {
				t = make(table)
				doc.categories[category] = t
			}
			for c, item := range items {
				t[item] = values[c]
			}
		case strings.HasPrefix(tok, "_"):
			cat, item, ok := splitTag(tok)
			if !ok {
				return nil, errors.Errorf("mmcif: malformed tag %q", tok)
			}
			i++
			if i >= len(tokens) {
				return nil, errors.Errorf("mmcif: tag %q has no value", tok)
			}
			val := tokens[i]
			i++
			t := doc.categories[cat]
			if t == nil {
				t = make(table)
				doc.categories[cat] = t
			}
			t[item] = append(t[item], val)
		default:
			i++
		}
	}
	return doc, nil
}

func isFrameControl(tok string) bool {
	return strings.HasPrefix(tok, "data_") || strings.HasPrefix(tok, "save_") || tok == "global_" || tok == "stop_"
}

func splitTag(tag string) (category, item string, ok bool) {
	tag = strings.TrimPrefix(tag, "_")
	dot := strings.Index(tag, ".")
	if dot < 0 {
		return "", "", false
	}
	return tag[:dot], tag[dot+1:], true
}
