package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/wavedeck/internal/playlist"
)

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		title  string
		source string
		want   bool
	}{
		{"", "", true},
		{"   ", "", true},
		{"Track 1", "", true},
		{"track 12", "", true},
		{"Track #3", "", true},
		{"Track No. 4", "", true},
		{"Untitled", "", true},
		{"Unknown", "", true},
		{"07", "", true},
		{"01 - intro.mp3", "https://cdn.example.com/r/01 - intro.mp3?sig=x", true},
		{"01 - intro", "/music/01 - intro.mp3", true},
		{"Intro", "/music/01 - intro.mp3", false},
		{"Tracking Shot", "", false},
		{"No Surprises", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			tr := playlist.Track{Title: tt.title, Source: tt.source}
			assert.Equal(t, tt.want, IsPlaceholder(tr))
		})
	}
}

func TestNeedsEnrichment(t *testing.T) {
	good := playlist.Track{Title: "Windowlicker"}
	generic := playlist.Track{Title: "Track 2"}

	assert.False(t, NeedsEnrichment(nil))
	assert.False(t, NeedsEnrichment([]playlist.Track{good}))
	assert.True(t, NeedsEnrichment([]playlist.Track{good, generic}))
}

func TestMerge(t *testing.T) {
	existing := []playlist.Track{
		{Key: "a", Source: "/r/a.mp3", Title: "Track 1", Link: "/p/r"},
		{Key: "b", Source: "/r/b.mp3", Title: "My Own Title", Artist: "Me"},
		{Key: "c", Source: "/r/c.mp3", Title: "Untitled", Duration: "9:99"},
	}
	authoritative := []Entry{
		{Title: "Opening", Artist: "Band", Length: 3*time.Minute + 5*time.Second},
		{Title: "Second", Artist: "Band", Length: time.Minute},
		{Title: "Third", Length: 2 * time.Minute},
		{Title: "Bonus"},
	}

	merged := Merge(existing, authoritative)

	require.Len(t, merged, len(existing), "surplus entries are never fabricated")
	assert.Equal(t, playlist.Track{Key: "a", Source: "/r/a.mp3", Title: "Opening", Artist: "Band", Duration: "3:05", Link: "/p/r"}, merged[0])
	assert.Equal(t, "My Own Title", merged[1].Title, "a real title wins")
	assert.Equal(t, "Me", merged[1].Artist)
	assert.Equal(t, "1:00", merged[1].Duration)
	assert.Equal(t, "Third", merged[2].Title)
	assert.Equal(t, "9:99", merged[2].Duration)
	assert.Equal(t, "Track 1", existing[0].Title, "input is not modified")
}

func TestMerge_ShorterAuthoritativeList(t *testing.T) {
	existing := []playlist.Track{
		{Key: "a", Title: "Track 1"},
		{Key: "b", Title: "Track 2"},
	}
	merged := Merge(existing, []Entry{{Title: "Only"}})

	require.Len(t, merged, 2)
	assert.Equal(t, "Only", merged[0].Title)
	assert.Equal(t, "Track 2", merged[1].Title)
}

func TestFormatLength(t *testing.T) {
	assert.Equal(t, "0:00", FormatLength(0))
	assert.Equal(t, "3:42", FormatLength(3*time.Minute+42*time.Second))
	assert.Equal(t, "1:02:03", FormatLength(time.Hour+2*time.Minute+3*time.Second+400*time.Millisecond))
}
