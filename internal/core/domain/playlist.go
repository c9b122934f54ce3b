package domain

import "time"

// Playlist is a playlist created on the streaming service.
type Playlist struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PlaylistInfo is the metadata kept for the last transition playlist of a user.
type PlaylistInfo struct {
	UserID      string    `json:"userId"`
	PlaylistID  string    `json:"playlistId"`
	PlaylistURL string    `json:"playlistUrl"`
	Name        string    `json:"name"`
	CurrentMood string    `json:"currentMood"`
	DesiredMood string    `json:"desiredMood"`
	TrackURIs   []string  `json:"trackUris"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PlaylistName is the display name for a transition playlist.
func PlaylistName(from, to Mood) string {
	return string(from) + " → " + string(to)
}

// PlaylistDescription is the description for a transition playlist.
func PlaylistDescription(from, to Mood) string {
	return "Transición gradual de " + string(from) + " a " + string(to)
}
