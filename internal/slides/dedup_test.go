package slides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(title string, bullets ...string) Record {
	if bullets == nil {
		bullets = []string{}
	}
	return Record{Title: title, Bullets: bullets}
}

func TestIsDuplicate(t *testing.T) {
	tests := []struct {
		name string
		a, b Record
		want bool
	}{
		{
			name: "identical titles decide alone",
			a:    rec("Threat Models", "one two three"),
			b:    rec("threat  models", "completely different text"),
			want: true,
		},
		{
			name: "title-only pair below 0.9",
			a:    rec("Intro to cloud security today"),
			b:    rec("Intro to cloud security tomorrow"),
			want: false,
		},
		{
			name: "title-only vs bullets is never a duplicate",
			a:    rec("Cloud security overview now"),
			b:    rec("Cloud security overview later", "x"),
			want: false,
		},
		{
			name: "similar titles and identical bullets",
			a:    rec("Identity and access management for cloud basics", "Use MFA everywhere", "Rotate keys often", "Least privilege"),
			b:    rec("Identity and access management for cloud essentials", "use mfa everywhere", "rotate keys often", "least privilege"),
			want: true,
		},
		{
			name: "similar titles but different bullets",
			a:    rec("Identity and access management for cloud basics", "Use MFA everywhere", "Rotate keys often"),
			b:    rec("Identity and access management for cloud essentials", "Audit logging pipelines", "Alert routing"),
			want: false,
		},
		{
			name: "different titles identical bullets",
			a:    rec("Encryption at rest", "Keys", "Policies", "Audits"),
			b:    rec("Network segmentation", "Keys", "Policies", "Audits"),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDuplicate(tt.a, tt.b, DefaultDupThreshold))
			assert.Equal(t, tt.want, IsDuplicate(tt.b, tt.a, DefaultDupThreshold))
		})
	}
}

func TestDeduplicateDropsExactAndNearDuplicates(t *testing.T) {
	in := []Record{
		rec("Cloud Security"),
		rec("Shared Responsibility", "Provider secures hardware", "Customer secures data", "Contracts define the split"),
		rec("Shared Responsibility", "Provider secures hardware", "Customer secures data", "Contracts define the split"),
		rec("shared   responsibility", "a", "b", "c"),
		rec("Identity", "MFA", "SSO", "RBAC"),
	}
	out := Deduplicate(in, 10)
	require.Len(t, out, 3)
	assert.Equal(t, "Cloud Security", out[0].Title)
	assert.Equal(t, "Shared Responsibility", out[1].Title)
	assert.Equal(t, "Identity", out[2].Title)
}

func TestDeduplicateStopsAtTarget(t *testing.T) {
	in := []Record{
		rec("One", "a", "b", "c"),
		rec("Two", "d", "e", "f"),
		rec("Three", "g", "h", "i"),
		rec("Four", "j", "k", "l"),
	}
	out := Deduplicate(in, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "One", out[0].Title)
	assert.Equal(t, "Two", out[1].Title)

	assert.Empty(t, Deduplicate(in, 0))
}

func TestDeduplicateIdempotent(t *testing.T) {
	in := []Record{
		rec("Intro"),
		rec("Alpha", "x y", "z w", "q r"),
		rec("alpha", "x y", "z w", "q r"),
		rec("Beta topic", "m", "n", "o"),
		rec("Beta topic overview", "m", "n", "o"),
		rec("Gamma", "p", "q", "r"),
		rec("Wrap up", "done"),
	}
	for target := 1; target <= len(in)+1; target++ {
		once := Deduplicate(in, target)
		twice := Deduplicate(once, target)
		assert.Equal(t, once, twice, "target %d", target)
	}
}

func TestDeduplicateDoesNotShareBullets(t *testing.T) {
	in := []Record{rec("Alpha", "a", "b", "c")}
	out := Deduplicate(in, 1)
	out[0].Bullets[0] = "changed"
	assert.Equal(t, "a", in[0].Bullets[0])
}

func TestNewFilterFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultDupThreshold, NewFilter(0).Threshold)
	assert.Equal(t, DefaultDupThreshold, NewFilter(1.5).Threshold)
	assert.Equal(t, 0.6, NewFilter(0.6).Threshold)
}

func TestDeduplicateStatsCountsSkipped(t *testing.T) {
	in := []Record{
		rec("Intro"),
		rec("Intro"),
		rec("Threat models", "a", "b", "c"),
		rec("threat   MODELS", "x", "y", "z"),
		rec("Encryption at rest", "keys", "rotation", "kms"),
		rec("Never examined", "p", "q", "r"),
	}
	out, dropped := NewFilter(0.85).DeduplicateStats(in, 3)
	require.Len(t, out, 3)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, "Encryption at rest", out[2].Title)
}
