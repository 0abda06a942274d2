package playlist

// Queue is the visible list: the tracks most recently handed to playback,
// plus the history offset they were recorded at.
type Queue struct {
	tracks []Track
	offset int // history index of tracks[0], -1 if empty
}

// NewQueue creates an empty visible queue.
func NewQueue() *Queue {
	return &Queue{
		tracks: make([]Track, 0),
		offset: -1,
	}
}

// Replace sets the visible list and its history offset.
func (q *Queue) Replace(offset int, tracks ...Track) {
	q.tracks = cloneTracks(tracks)
	q.offset = offset
	if len(tracks) == 0 {
		q.offset = -1
	}
}

// IndexOf converts a history index into a visible index.
// Returns -1 if the history entry is not part of the visible list.
func (q *Queue) IndexOf(historyIndex int) int {
	if q.offset < 0 {
		return -1
	}
	i := historyIndex - q.offset
	if i < 0 || i >= len(q.tracks) {
		return -1
	}
	return i
}

// Tracks returns a copy of the visible list.
func (q *Queue) Tracks() []Track {
	return cloneTracks(q.tracks)
}

// Len returns the number of visible tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Patch replaces display fields of every visible track whose key is in byKey.
func (q *Queue) Patch(byKey map[string]Track) int {
	return patchAll(q.tracks, byKey)
}
