// Package musicbrainz fetches authoritative release tracklists from the
// MusicBrainz web service.
package musicbrainz

// ReleaseDetails is a release with its tracks, in disc then position order.
type ReleaseDetails struct {
	ID     string
	Title  string
	Artist string // joined artist credit
	Date   string
	Discs  int
	Tracks []Track
}

// Track is one track of a release.
type Track struct {
	Disc     int // 1-based medium position
	Position int
	Title    string
	Artist   string
	Length   int // milliseconds, 0 when unknown
}

type artistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
	JoinPhrase string `json:"joinphrase"`
}

type releaseResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Media        []struct {
		Position int `json:"position"`
		Tracks   []struct {
			Position     int            `json:"position"`
			Title        string         `json:"title"`
			Length       int            `json:"length"`
			ArtistCredit []artistCredit `json:"artist-credit"`
			Recording    *struct {
				Title string `json:"title"`
			} `json:"recording"`
		} `json:"tracks"`
	} `json:"media"`
}
