package slides

import "strings"

// IsDuplicate classifies two slides as redundant.
//
// Title similarity is checked first and decides on its own when it reaches
// threshold. Title-only pairs need 0.9 title similarity. A title-only slide is
// never a duplicate of a slide with bullets. Otherwise both the titles (>= 0.7)
// and the joined bullets (>= threshold) must overlap.
func IsDuplicate(a, b Record, threshold float64) bool {
	titleSim := Similarity(a.Title, b.Title)
	if titleSim >= threshold {
		return true
	}
	aEmpty, bEmpty := len(a.Bullets) == 0, len(b.Bullets) == 0
	switch {
	case aEmpty && bEmpty:
		return titleSim >= titleOnlyThreshold
	case aEmpty != bEmpty:
		return false
	}
	bulletSim := Similarity(joinBullets(a.Bullets), joinBullets(b.Bullets))
	return titleSim >= titleWithBulletsBase && bulletSim >= threshold
}

// Filter removes exact and near-duplicate slides.
type Filter struct {
	Threshold float64
}

// NewFilter returns a Filter, falling back to DefaultDupThreshold for
// thresholds outside (0,1].
func NewFilter(threshold float64) Filter {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultDupThreshold
	}
	return Filter{Threshold: threshold}
}

// Deduplicate keeps slides in input order, skipping any whose exact key was
// already seen or which IsDuplicate matches against an accepted slide. It
// stops once target slides are accepted.
func (f Filter) Deduplicate(in []Record, target int) []Record {
	out, _ := f.DeduplicateStats(in, target)
	return out
}

// DeduplicateStats is Deduplicate that also reports how many of the examined
// slides were skipped as duplicates. Slides after the early exit are not counted.
func (f Filter) DeduplicateStats(in []Record, target int) ([]Record, int) {
	if target <= 0 {
		return []Record{}, 0
	}
	dropped := 0
	out := make([]Record, 0, min(len(in), target))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if len(out) == target {
			break
		}
		key := exactKey(s)
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		dup := false
		for _, kept := range out {
			if IsDuplicate(s, kept, f.Threshold) {
				dup = true
				break
			}
		}
		if dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s.clone())
	}
	return out, dropped
}

// Deduplicate runs a Filter with the default threshold.
func Deduplicate(in []Record, target int) []Record {
	return NewFilter(DefaultDupThreshold).Deduplicate(in, target)
}

func exactKey(s Record) string {
	parts := make([]string, len(s.Bullets))
	for i, b := range s.Bullets {
		parts[i] = normalizeText(b)
	}
	return normalizeText(s.Title) + "::" + strings.Join(parts, "|")
}

func joinBullets(b []string) string {
	return strings.Join(b, " ")
}
