package slides

import "fmt"

type placeholderText struct {
	title   string
	bullets [2]string
}

var placeholders = map[Language]placeholderText{
	English: {
		title:   "%s: Part %s",
		bullets: [2]string{"Key points about %s", "Further details and examples"},
	},
	Arabic: {
		title:   "%s: الجزء %s",
		bullets: [2]string{"نقاط رئيسية حول %s", "تفاصيل وأمثلة إضافية"},
	},
}

// Placeholder builds the synthetic slide for 1-based slide number n.
func Placeholder(topic string, n int, lang Language) Record {
	pt, ok := placeholders[lang]
	if !ok {
		pt = placeholders[English]
	}
	num := fmt.Sprint(n)
	if lang == Arabic {
		num = arabicDigits(n)
	}
	return Record{
		Title: fmt.Sprintf(pt.title, topic, num),
		Bullets: []string{
			fmt.Sprintf(pt.bullets[0], topic),
			pt.bullets[1],
		},
	}
}

// EnforceCount returns exactly target slides: missing slides are appended as
// placeholders and surplus slides are dropped from the end.
func EnforceCount(in []Record, target int, topic string, lang Language) []Record {
	if target < 0 {
		target = 0
	}
	out := make([]Record, 0, target)
	for i := 0; i < len(in) && i < target; i++ {
		out = append(out, in[i].clone())
	}
	for len(out) < target {
		out = append(out, Placeholder(topic, len(out)+1, lang))
	}
	return out
}

// ApplyRoles re-applies the positional bullet rules to a final deck and
// returns the corrections made. Short content slides are not reported here.
func ApplyRoles(deck []Record) []Note {
	var notes []Note
	for i := range deck {
		for _, n := range enforceRole(&deck[i], RoleAt(i, len(deck))) {
			if n.Kind == NoteBulletsShort {
				continue
			}
			n.Index = i
			notes = append(notes, n)
		}
	}
	return notes
}
