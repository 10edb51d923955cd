package slides

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NoteKind identifies a correction or warning made while normalizing.
type NoteKind string

const (
	NoteTitleSynthesized NoteKind = "title_synthesized"
	NoteBulletsCleared   NoteKind = "bullets_cleared"
	NoteBulletsTruncated NoteKind = "bullets_truncated"
	NoteBulletsShort     NoteKind = "bullets_short"
)

// Note records one soft condition found while normalizing a slide.
type Note struct {
	Kind   NoteKind
	Index  int
	Detail string
}

// Normalize turns a raw slide at position index of a total-slide deck into a
// Record. It never fails: missing titles are synthesized and bullet counts are
// brought within the bounds of the slide's role. A content slide with fewer
// than MinContentBullets bullets is kept as is and reported.
func Normalize(raw RawSlide, index, total int, lang Language) (Record, []Note) {
	rec, notes := NormalizeRole(raw, RoleAt(index, total))
	if rec.Title == "" {
		rec.Title = SlideLabel(index+1, lang)
		notes = append(notes, Note{Kind: NoteTitleSynthesized})
	}
	for i := range notes {
		notes[i].Index = index
	}
	return rec, notes
}

// NormalizeRole applies the rules of an explicit role. A blank title is left
// blank for the caller to fill in.
func NormalizeRole(raw RawSlide, role Role) (Record, []Note) {
	rec := Record{
		Title:   strings.TrimSpace(raw.Title),
		Bullets: coerceBullets(raw.Bullets),
	}
	return rec, enforceRole(&rec, role)
}

func enforceRole(rec *Record, role Role) []Note {
	var notes []Note
	n := len(rec.Bullets)
	switch role {
	case RoleFirst:
		if n > 0 {
			rec.Bullets = []string{}
			notes = append(notes, Note{Kind: NoteBulletsCleared, Detail: fmt.Sprintf("first slide had %d bullets", n)})
		}
	case RoleLast:
		if n > MaxLastBullets {
			rec.Bullets = rec.Bullets[:MaxLastBullets]
			notes = append(notes, Note{Kind: NoteBulletsTruncated, Detail: fmt.Sprintf("last slide had %d bullets", n)})
		}
	default:
		if n > MaxContentBullets {
			rec.Bullets = rec.Bullets[:MaxContentBullets]
			notes = append(notes, Note{Kind: NoteBulletsTruncated, Detail: fmt.Sprintf("content slide had %d bullets", n)})
		} else if n < MinContentBullets {
			notes = append(notes, Note{Kind: NoteBulletsShort, Detail: fmt.Sprintf("content slide has %d bullets", n)})
		}
	}
	return notes
}

// coerceBullets returns trimmed, non-empty bullet strings. Non-string values
// are stringified and nil entries dropped.
func coerceBullets(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		var s string
		switch t := v.(type) {
		case nil:
			continue
		case string:
			s = t
		case json.Number:
			s = t.String()
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case map[string]any, []any:
			b, err := json.Marshal(t)
			if err != nil {
				continue
			}
			s = string(b)
		default:
			s = fmt.Sprint(t)
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SlideLabel is the fallback title for slide number n.
func SlideLabel(n int, lang Language) string {
	if lang == Arabic {
		return "الشريحة " + arabicDigits(n)
	}
	return "Slide " + strconv.Itoa(n)
}

// arabicDigits renders n with Arabic-Indic digits.
func arabicDigits(n int) string {
	s := strconv.Itoa(n)
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune('٠' + (r - '0'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
