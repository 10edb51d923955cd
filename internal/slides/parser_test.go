package slides

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(in []RawSlide) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.Title
	}
	return out
}

func TestParseSlidesWellFormed(t *testing.T) {
	raw := `Slide 1:
Title: Cloud Security
Bullets:

Slide 2:
Title: Shared Responsibility
Bullets:
- Provider secures the infrastructure
- Customer secures data and identities
- Contracts define the boundary

Slide 3:
Title: Wrap Up
Bullets:
- Review your controls
`
	out := ParseSlides(raw)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"Cloud Security", "Shared Responsibility", "Wrap Up"}, titles(out))
	assert.Empty(t, out[0].Bullets)
	assert.Equal(t, []any{
		"Provider secures the infrastructure",
		"Customer secures data and identities",
		"Contracts define the boundary",
	}, out[1].Bullets)
	assert.Equal(t, []any{"Review your controls"}, out[2].Bullets)
}

func TestParseSlidesToleratesFormatDrift(t *testing.T) {
	raw := "Here is your deck:\n\n" +
		"```\n" +
		"## **Slide 1: Introduction**\n" +
		"\n" +
		"**Slide 2**\n" +
		"**Title:**   Threat Landscape  \n" +
		"   * Ransomware   \n" +
		"   • Phishing\n" +
		"   -Insider risk\n" +
		"---\n" +
		"Slide 3 - Title: \"Controls\"\n" +
		"Bullet points:\n" +
		"1. Patch quickly\n" +
		"2) Segment networks\n" +
		"Slide 4:\n" +
		"- orphan bullet without title\n" +
		"Title: Summary\n" +
		"```\n"
	out := ParseSlides(raw)
	require.Equal(t, []string{"Introduction", "Threat Landscape", "Controls", "Summary"}, titles(out))
	assert.Empty(t, out[0].Bullets)
	assert.Equal(t, []any{"Ransomware", "Phishing", "Insider risk"}, out[1].Bullets)
	assert.Equal(t, []any{"Patch quickly", "Segment networks"}, out[2].Bullets)
	assert.Equal(t, []any{"orphan bullet without title"}, out[3].Bullets)
}

func TestParseSlidesDropsBlocksWithoutTitle(t *testing.T) {
	raw := `Slide 1:
Bullets:
- nothing to anchor this

Slide 2:
Title: Kept
`
	out := ParseSlides(raw)
	require.Len(t, out, 1)
	assert.Equal(t, "Kept", out[0].Title)
	assert.Empty(t, out[0].Bullets)
}

func TestParseSlidesTitleLinesWithoutMarkers(t *testing.T) {
	raw := "Title: One\n- a\nTitle: Two\n- b\n- c\n"
	out := ParseSlides(raw)
	require.Len(t, out, 2)
	assert.Equal(t, []any{"a"}, out[0].Bullets)
	assert.Equal(t, []any{"b", "c"}, out[1].Bullets)
}

func TestParseSlidesArabicMarkers(t *testing.T) {
	raw := "الشريحة ١:\nالعنوان: مقدمة\n\nالشريحة ٢:\nالعنوان: التهديدات\nالنقاط:\n- التصيد\n- برامج الفدية\n"
	out := ParseSlides(raw)
	require.Equal(t, []string{"مقدمة", "التهديدات"}, titles(out))
	assert.Equal(t, []any{"التصيد", "برامج الفدية"}, out[1].Bullets)
}

func TestParseSlidesJSON(t *testing.T) {
	raw := "```json\n" + `[
  {"title": "Intro", "bullets": []},
  {"title": "Numbers", "bullets": ["one", 2, null, true]},
  {"title": "", "bullets": ["dropped"]},
  {"title": "Points", "points": ["p1"]}
]` + "\n```"
	out := ParseSlides(raw)
	require.Equal(t, []string{"Intro", "Numbers", "Points"}, titles(out))
	assert.Equal(t, []any{"one", json.Number("2"), nil, true}, out[1].Bullets)
	assert.Equal(t, []any{"p1"}, out[2].Bullets)

	wrapped := ParseSlides(`{"slides": [{"title": "Only"}]}`)
	require.Len(t, wrapped, 1)
	assert.Equal(t, "Only", wrapped[0].Title)
}

func TestParseSlidesUnusableInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "I cannot help with that.", "[not json", "- loose bullet\n- another"} {
		assert.Empty(t, ParseSlides(raw), "%q", raw)
	}
}

func TestParseSlidesJSONAfterPreamble(t *testing.T) {
	fenced := "Here is your deck:\n```json\n" +
		`[{"title":"Intro","bullets":[]},{"title":"Body","bullets":["a","b","c"]}]` +
		"\n```\nLet me know if you want changes."
	out := ParseSlides(fenced)
	require.Equal(t, []string{"Intro", "Body"}, titles(out))
	assert.Equal(t, []any{"a", "b", "c"}, out[1].Bullets)

	bare := `Sure! {"slides": [{"title": "Only", "bullets": ["x"]}]}`
	out = ParseSlides(bare)
	require.Equal(t, []string{"Only"}, titles(out))
}

func TestParseSlidesEmptyTitleLineKeepsMarkerTitle(t *testing.T) {
	raw := "Slide 1: Introduction\nTitle:\n\nSlide 2:\nTitle: Body\nBullets:\n- a\n"
	out := ParseSlides(raw)
	require.Equal(t, []string{"Introduction", "Body"}, titles(out))
	assert.Empty(t, out[0].Bullets)
}

func TestParseSlidesNegativeNumbers(t *testing.T) {
	raw := "Slide 1:\nTitle: Weather\nBullets:\n-5 degrees overnight\n- 12 degrees by noon\n-Windy afternoon\n"
	out := ParseSlides(raw)
	require.Len(t, out, 1)
	assert.Equal(t, []any{"-5 degrees overnight", "12 degrees by noon", "Windy afternoon"}, out[0].Bullets)

	assert.Empty(t, ParseSlides("Title: Loose\n-3 is not a bullet here\n")[0].Bullets)
}
