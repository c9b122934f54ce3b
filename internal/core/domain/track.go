package domain

// Track is a streaming-service track passed through from recommendations.
type Track struct {
	ID      string   `json:"id"`
	URI     string   `json:"uri"`
	Name    string   `json:"name"`
	Artists []string `json:"artists,omitempty"`
}

// RecommendationQuery is one call to the recommendation service.
type RecommendationQuery struct {
	Target      MoodProfile
	GenreSeeds  []string
	ArtistSeeds []string
	Limit       int
}
