package briefing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentPages_ExplicitMarkers(t *testing.T) {
	t.Run("dash separator", func(t *testing.T) {
		pages := segmentPages("First page.\n---\nSecond page.", 3000)
		require.Len(t, pages, 2)
		assert.Equal(t, "First page.", pages[0])
		assert.Equal(t, "Second page.", pages[1])
	})

	t.Run("form feed", func(t *testing.T) {
		pages := segmentPages("One\fTwo\fThree", 3000)
		assert.Equal(t, []string{"One", "Two", "Three"}, pages)
	})

	t.Run("page number lines", func(t *testing.T) {
		pages := segmentPages("Intro text\nPage 2\nBody text", 3000)
		assert.Equal(t, []string{"Intro text", "Body text"}, pages)
	})
}

func TestSegmentPages_GreedyParagraphPacking(t *testing.T) {
	para := strings.Repeat("word ", 40) // ~200 chars
	text := strings.Join([]string{para, para, para, para}, "\n\n")

	pages := segmentPages(text, 450)

	require.Greater(t, len(pages), 1)
	for _, p := range pages {
		assert.LessOrEqual(t, len(p), 450+len(para), "a single oversized paragraph may exceed the cap, packed pages may not")
	}
	assert.Equal(t, strings.Count(text, "word"), countWords(pages), "no content lost")
}

func countWords(pages []string) int {
	n := 0
	for _, p := range pages {
		n += strings.Count(p, "word")
	}
	return n
}

func TestSegmentPages_SinglePage(t *testing.T) {
	pages := segmentPages("Just a short update with no breaks.", 3000)
	assert.Equal(t, []string{"Just a short update with no breaks."}, pages)
}

func TestSegmentPages_Empty(t *testing.T) {
	assert.Nil(t, segmentPages("", 3000))
	assert.Nil(t, segmentPages("   \n\t  ", 3000))
}
