package playlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQueue(t *testing.T) {
	q := NewQueue()

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, -1, q.IndexOf(0))
}

func TestQueue_Replace(t *testing.T) {
	q := NewQueue()

	q.Replace(3, keyed("a", "b")...)

	assert.Equal(t, 2, q.Len())
	assert.Equal(t, 0, q.IndexOf(3))
	assert.Equal(t, 1, q.IndexOf(4))
	assert.Equal(t, -1, q.IndexOf(5))
	assert.Equal(t, -1, q.IndexOf(2))
}

func TestQueue_ReplaceEmptyResetsOffset(t *testing.T) {
	q := NewQueue()
	q.Replace(3, keyed("a")...)

	q.Replace(7)

	assert.Equal(t, 0, q.Len())
	assert.Equal(t, -1, q.IndexOf(7))
}

func TestQueue_Patch(t *testing.T) {
	q := NewQueue()
	q.Replace(0, keyed("a", "b")...)

	changed := q.Patch(map[string]Track{"a": {Key: "a", Title: "Ay"}})

	assert.Equal(t, 1, changed)
	assert.Equal(t, "Ay", q.Tracks()[0].Title)
	assert.Equal(t, "Track b", q.Tracks()[1].Title)
}
