package papermate

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/alnah/go-papermate/internal/yamlutil"
)

// Summary describes a manuscript for reporting before it is rendered.
type Summary struct {
	Title     string   // front matter title, else the first level-1 heading
	Words     int      // words of prose, excluding code and front matter
	Citations []string // distinct citation keys in order of first use
}

// citationPattern matches pandoc citation keys: "@key" and "@{key}".
// The "@" must not follow a word character, which excludes e-mail addresses.
var citationPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_@])@(?:\{([^}\s]+)\}|([\p{L}\p{N}_][\p{L}\p{N}_:.#$%&\-+?<>~/]*))`)

// crossrefPrefixes mark pandoc-crossref labels, which share citation syntax.
var crossrefPrefixes = []string{"fig:", "tbl:", "sec:", "eq:", "lst:"}

// bibEntryPattern matches the key of a BibTeX entry: "@article{key,".
var bibEntryPattern = regexp.MustCompile(`(?m)^\s*@([A-Za-z]+)\s*[{(]\s*([^,\s]+)\s*,`)

var markdown = goldmark.New()

// Inspect parses a Markdown manuscript and summarizes it. It never fails:
// malformed front matter is ignored and the rest is still counted.
func Inspect(source []byte) Summary {
	meta, body := splitFrontMatter(source)

	var s Summary
	if meta != nil {
		if title, ok := meta["title"].(string); ok {
			s.Title = strings.TrimSpace(title)
		}
	}

	doc := markdown.Parser().Parse(text.NewReader(body))

	var prose bytes.Buffer
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if n.Type() == ast.TypeBlock {
				prose.WriteByte('\n')
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.CodeSpan, *ast.RawHTML, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			if s.Title == "" && node.Level == 1 {
				s.Title = strings.TrimSpace(inlineText(node, body))
			}
		case *ast.Text:
			prose.Write(node.Segment.Value(body))
			if node.SoftLineBreak() || node.HardLineBreak() {
				prose.WriteByte(' ')
			}
		case *ast.String:
			prose.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})

	s.Words = len(strings.Fields(prose.String()))
	s.Citations = citationKeys(prose.String())
	return s
}

// inlineText concatenates the text under an inline container.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}

// splitFrontMatter separates a leading YAML metadata block delimited by
// "---" and "---" or "...". The closer ends a line or the file. Returns nil
// metadata when there is none or it does not parse as a mapping.
func splitFrontMatter(source []byte) (map[string]any, []byte) {
	normalized := bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return nil, source
	}

	rest := normalized[len("---\n"):]
	for _, closing := range [][]byte{[]byte("\n---\n"), []byte("\n...\n")} {
		idx := bytes.Index(rest, closing)
		if idx < 0 {
			continue
		}
		meta, err := yamlutil.Mapping(rest[:idx])
		if err != nil {
			return nil, source
		}
		return meta, rest[idx+len(closing):]
	}
	for _, closing := range [][]byte{[]byte("\n---"), []byte("\n...")} {
		if !bytes.HasSuffix(rest, closing) {
			continue
		}
		meta, err := yamlutil.Mapping(rest[:len(rest)-len(closing)])
		if err != nil {
			return nil, source
		}
		return meta, nil
	}
	return nil, source
}

// citationKeys extracts distinct citation keys from prose, in order of first use.
func citationKeys(prose string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range citationPattern.FindAllStringSubmatch(prose, -1) {
		key := m[1]
		if key == "" {
			// Keys cannot end with punctuation; it belongs to the sentence.
			key = strings.TrimRight(m[2], ":.#$%&-+?<>~/")
		}
		if key == "" || seen[key] || isCrossref(key) {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

func isCrossref(key string) bool {
	for _, prefix := range crossrefPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// BibliographyKeys returns the entry keys of a BibTeX database.
// @string, @preamble and @comment blocks are not entries.
func BibliographyKeys(data []byte) map[string]bool {
	keys := make(map[string]bool)
	for _, m := range bibEntryPattern.FindAllSubmatch(data, -1) {
		switch strings.ToLower(string(m[1])) {
		case "string", "preamble", "comment":
			continue
		}
		keys[string(m[2])] = true
	}
	return keys
}

// MissingCitations returns the cited keys absent from the bibliography, sorted.
func MissingCitations(cited []string, bibliography map[string]bool) []string {
	var missing []string
	for _, key := range cited {
		if !bibliography[key] {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
