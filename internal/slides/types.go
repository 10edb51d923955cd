package slides

import "strings"

// Language selects placeholder and label text.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// ParseLanguage reports whether s names a supported language.
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, true
	case Arabic:
		return Arabic, true
	}
	return "", false
}

// Role is derived from a slide's position in the final deck.
type Role string

const (
	RoleFirst   Role = "first"
	RoleLast    Role = "last"
	RoleContent Role = "content"
)

// RoleAt returns the role of position index in a deck of total slides.
// A single-slide deck is treated as first (title-only).
func RoleAt(index, total int) Role {
	switch {
	case index == 0:
		return RoleFirst
	case index == total-1:
		return RoleLast
	default:
		return RoleContent
	}
}

// Bullet bounds per role.
const (
	MaxLastBullets       = 3
	MinContentBullets    = 3
	MaxContentBullets    = 5
	DefaultDupThreshold  = 0.85
	titleOnlyThreshold   = 0.9
	titleWithBulletsBase = 0.7
)

// Record is a normalized slide: a title and its bullets.
type Record struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// RawSlide is a slide-like value as extracted from model output.
// Bullets keep whatever type the source produced.
type RawSlide struct {
	Title   string
	Bullets []any
}

// clone returns a Record that owns its bullet slice.
func (r Record) clone() Record {
	b := make([]string, len(r.Bullets))
	copy(b, r.Bullets)
	return Record{Title: r.Title, Bullets: b}
}
