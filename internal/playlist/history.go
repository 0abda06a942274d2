package playlist

// History is the append-only record of everything queued in this session,
// with a cursor on the active entry.
//
// Invariant: cursor is a valid index, or -1 when the history is empty.
type History struct {
	tracks []Track
	cursor int
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{
		tracks: make([]Track, 0),
		cursor: -1,
	}
}

// Append records tracks after the cursor and returns the index of the first
// appended entry. Entries after the cursor (forward history) are dropped;
// entries at or before the cursor are never modified.
func (h *History) Append(tracks ...Track) int {
	if h.cursor < len(h.tracks)-1 {
		h.tracks = h.tracks[:h.cursor+1]
	}
	offset := len(h.tracks)
	h.tracks = append(h.tracks, tracks...)
	return offset
}

// MoveTo places the cursor on index.
// Returns the track at that position, or nil if invalid.
func (h *History) MoveTo(index int) *Track {
	if index < 0 || index >= len(h.tracks) {
		return nil
	}
	h.cursor = index
	return h.Current()
}

// Current returns the entry under the cursor, or nil if nothing ever played.
func (h *History) Current() *Track {
	if h.cursor < 0 || h.cursor >= len(h.tracks) {
		return nil
	}
	t := h.tracks[h.cursor]
	return &t
}

// Cursor returns the cursor position (-1 if nothing ever played).
func (h *History) Cursor() int {
	return h.cursor
}

// HasNext returns true if there's an entry after the cursor.
func (h *History) HasNext() bool {
	return h.cursor >= 0 && h.cursor < len(h.tracks)-1
}

// HasPrevious returns true if there's an entry before the cursor.
func (h *History) HasPrevious() bool {
	return h.cursor > 0
}

// Next moves the cursor forward and returns the new entry.
// Returns nil, leaving the cursor alone, if there is no later entry.
func (h *History) Next() *Track {
	if !h.HasNext() {
		return nil
	}
	h.cursor++
	return h.Current()
}

// Previous moves the cursor back and returns the new entry.
// Returns nil, leaving the cursor alone, if there is no earlier entry.
func (h *History) Previous() *Track {
	if !h.HasPrevious() {
		return nil
	}
	h.cursor--
	return h.Current()
}

// At returns a copy of the entry at index, or nil if out of bounds.
func (h *History) At(index int) *Track {
	if index < 0 || index >= len(h.tracks) {
		return nil
	}
	t := h.tracks[index]
	return &t
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.tracks)
}

// Tracks returns a copy of all entries.
func (h *History) Tracks() []Track {
	return cloneTracks(h.tracks)
}

// Patch replaces the display fields of every entry whose key is in byKey.
// Returns the number of entries that changed.
func (h *History) Patch(byKey map[string]Track) int {
	return patchAll(h.tracks, byKey)
}
