package slides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	markerWords  = []string{"slide", "الشريحة", "شريحة"}
	titleLabels  = []string{"title", "العنوان"}
	bulletLabels = []string{"bullets", "bullet points", "النقاط"}
)

// ParseSlides extracts slide blocks from model output in the order they appear.
//
// The expected shape is a sequence of blocks, each opened by a marker line such
// as "Slide 2:" and holding a "Title:" line and an optional "Bullets:" section
// of dash-prefixed lines. Markdown headings, emphasis and code fences are
// ignored. A "Title:" line without a preceding marker opens a new block, and a
// marker line may carry the title itself. Blocks without a title are dropped.
// Output that is a JSON array of {title, bullets} objects is accepted as well,
// also when it sits in a code fence or follows a line of prose.
func ParseSlides(raw string) []RawSlide {
	text := stripFences(raw)
	for _, c := range jsonCandidates(raw, text) {
		if out, ok := parseJSON(c); ok {
			return out
		}
	}

	p := &blockScanner{}
	for _, line := range strings.Split(text, "\n") {
		p.line(line)
	}
	p.flush()
	return p.out
}

type block struct {
	title       string
	hasTitle    bool
	markerTitle string
	bullets     []any
	inBullets   bool
}

type blockScanner struct {
	cur *block
	out []RawSlide
}

func (p *blockScanner) line(line string) {
	l := strings.TrimSpace(line)
	if l == "" {
		return
	}
	plain := plainLine(l)

	if rest, ok := matchMarker(plain); ok {
		p.flush()
		p.cur = &block{}
		if v, ok := matchLabel(rest, titleLabels); ok {
			p.cur.title, p.cur.hasTitle = v, true
		} else {
			p.cur.markerTitle = rest
		}
		return
	}
	if v, ok := matchLabel(plain, titleLabels); ok {
		if p.cur == nil || p.cur.hasTitle {
			p.flush()
			p.cur = &block{}
		}
		p.cur.title, p.cur.hasTitle = v, true
		p.cur.inBullets = false
		return
	}
	if p.cur == nil {
		return
	}
	if v, ok := matchLabel(plain, bulletLabels); ok {
		p.cur.inBullets = true
		if v != "" {
			p.cur.bullets = append(p.cur.bullets, v)
		}
		return
	}
	if item, ok := bulletItem(l, p.cur.inBullets); ok {
		p.cur.bullets = append(p.cur.bullets, item)
	}
}

func (p *blockScanner) flush() {
	if p.cur == nil {
		return
	}
	b := p.cur
	p.cur = nil
	title := cleanTitle(b.title)
	if title == "" {
		title = cleanTitle(b.markerTitle)
	}
	if title == "" {
		return
	}
	p.out = append(p.out, RawSlide{Title: title, Bullets: b.bullets})
}

// plainLine drops markdown heading marks and bold markers so labels match.
func plainLine(l string) string {
	l = strings.TrimLeft(l, "#")
	l = strings.ReplaceAll(l, "**", "")
	l = strings.ReplaceAll(l, "__", "")
	return strings.TrimSpace(l)
}

// matchMarker recognizes "Slide <n>" and returns the remainder of the line.
func matchMarker(plain string) (string, bool) {
	for _, w := range markerWords {
		if !hasFoldPrefix(plain, w) {
			continue
		}
		rest := strings.TrimLeft(plain[len(w):], " \t#")
		digits := 0
		for _, r := range rest {
			if !unicode.IsDigit(r) {
				break
			}
			digits += utf8.RuneLen(r)
		}
		if digits == 0 {
			continue
		}
		rest = strings.TrimLeft(rest[digits:], " \t:-–—.)")
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// matchLabel recognizes "<label>: value".
func matchLabel(plain string, labels []string) (string, bool) {
	for _, lb := range labels {
		if !hasFoldPrefix(plain, lb) {
			continue
		}
		rest := strings.TrimSpace(plain[len(lb):])
		if strings.HasPrefix(rest, ":") {
			return strings.TrimSpace(rest[1:]), true
		}
		if strings.HasPrefix(rest, "：") {
			return strings.TrimSpace(rest[len("："):]), true
		}
	}
	return "", false
}

// bulletItem recognizes dash, star and bullet-glyph list lines. Numbered
// lines count only inside a Bullets section.
func bulletItem(l string, inBullets bool) (string, bool) {
	for _, p := range []string{"- ", "* ", "• ", "– ", "— ", "•", "-"} {
		if strings.HasPrefix(l, p) {
			if p == "-" && len(l) > 1 && l[1] >= '0' && l[1] <= '9' {
				// A negative number, not a list marker.
				if inBullets {
					return l, true
				}
				return "", false
			}
			item := strings.TrimSpace(l[len(p):])
			if item == "" || strings.Trim(item, "-") == "" {
				return "", false
			}
			return item, true
		}
	}
	if inBullets {
		i := 0
		for i < len(l) && l[i] >= '0' && l[i] <= '9' {
			i++
		}
		if i > 0 && i < len(l) && (l[i] == '.' || l[i] == ')') {
			if item := strings.TrimSpace(l[i+1:]); item != "" {
				return item, true
			}
		}
	}
	return "", false
}

func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_#`")
	s = strings.Trim(s, "\"'“”«»")
	return strings.TrimSpace(s)
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// stripFences removes markdown code fence lines.
func stripFences(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

// jsonCandidates lists the places JSON output may start: the whole text, the
// body of each fenced block, and the first bracket or brace.
func jsonCandidates(raw, text string) []string {
	out := []string{text}
	out = append(out, fencedBlocks(raw)...)
	for _, open := range []string{"[", "{"} {
		if i := strings.Index(text, open); i > 0 {
			out = append(out, text[i:])
		}
	}
	return out
}

func fencedBlocks(s string) []string {
	if !strings.Contains(s, "```") {
		return nil
	}
	var out []string
	var cur []string
	inside := false
	for _, l := range strings.Split(s, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			if inside {
				out = append(out, strings.Join(cur, "\n"))
				cur = cur[:0]
			}
			inside = !inside
			continue
		}
		if inside {
			cur = append(cur, l)
		}
	}
	return out
}

type jsonSlide struct {
	Title   any   `json:"title"`
	Bullets []any `json:"bullets"`
	Points  []any `json:"points"`
}

// parseJSON accepts a JSON array of slides or an object with a "slides" array.
func parseJSON(text string) ([]RawSlide, bool) {
	t := strings.TrimSpace(text)
	if t == "" || (t[0] != '[' && t[0] != '{') {
		return nil, false
	}
	var items []jsonSlide
	dec := json.NewDecoder(bytes.NewReader([]byte(t)))
	dec.UseNumber()
	if t[0] == '[' {
		if err := dec.Decode(&items); err != nil {
			return nil, false
		}
	} else {
		var wrap struct {
			Slides []jsonSlide `json:"slides"`
		}
		if err := dec.Decode(&wrap); err != nil {
			return nil, false
		}
		items = wrap.Slides
	}
	out := make([]RawSlide, 0, len(items))
	for _, it := range items {
		title := ""
		if it.Title != nil {
			title = cleanTitle(fmt.Sprint(it.Title))
		}
		if title == "" {
			continue
		}
		bullets := it.Bullets
		if bullets == nil {
			bullets = it.Points
		}
		out = append(out, RawSlide{Title: title, Bullets: bullets})
	}
	return out, len(out) > 0
}
