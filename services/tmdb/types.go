package tmdb

import "encoding/json"

// ChangeRecord is one category of upstream edits inside a change window.
// Records are transient: produced here, consumed by the sync pass, never
// persisted.
type ChangeRecord struct {
	Key   string       `json:"key"`
	Items []ChangeItem `json:"items"`
}

type ChangeItem struct {
	ID     string      `json:"id"`
	Action string      `json:"action"`
	Time   string      `json:"time"`
	Value  ChangeValue `json:"value"`
}

// ChangeValue is polymorphic upstream: an object for season/episode entries,
// a bare string for most scalar edits. Non-object payloads decode to zero
// values, which is all the sync pass needs.
type ChangeValue struct {
	SeasonID      int `json:"season_id"`
	SeasonNumber  int `json:"season_number"`
	EpisodeID     int `json:"episode_id"`
	EpisodeNumber int `json:"episode_number"`
}

func (v *ChangeValue) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || data[0] != '{' {
		*v = ChangeValue{}
		return nil
	}
	type plain ChangeValue
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		// Tolerate unexpected shapes inside the object; the caller only
		// acts on season/episode references.
		*v = ChangeValue{}
		return nil
	}
	*v = ChangeValue(p)
	return nil
}

type changesResponse struct {
	Changes []ChangeRecord `json:"changes"`
}

type GenreRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type NetworkRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Provider struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

type providerRegion struct {
	Flatrate []Provider `json:"flatrate"`
}

type watchProviders struct {
	Results map[string]providerRegion `json:"results"`
}

type contentRatings struct {
	Results []struct {
		ISO31661 string `json:"iso_3166_1"`
		Rating   string `json:"rating"`
	} `json:"results"`
}

type releaseDates struct {
	Results []struct {
		ISO31661     string `json:"iso_3166_1"`
		ReleaseDates []struct {
			Certification string `json:"certification"`
		} `json:"release_dates"`
	} `json:"results"`
}

type EpisodeRef struct {
	ID            int    `json:"id"`
	EpisodeNumber int    `json:"episode_number"`
	EpisodeType   string `json:"episode_type"`
	SeasonNumber  int    `json:"season_number"`
	Name          string `json:"name"`
	Overview      string `json:"overview"`
	AirDate       string `json:"air_date"`
	Runtime       int    `json:"runtime"`
	StillPath     string `json:"still_path"`
}

type SeasonRef struct {
	ID           int    `json:"id"`
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	AirDate      string `json:"air_date"`
}

// ShowDetails is the flattened provider payload for one series, including the
// appended US-relevant sub-resources the refresh pipeline consumes.
type ShowDetails struct {
	ID               int            `json:"id"`
	Name             string         `json:"name"`
	Overview         string         `json:"overview"`
	FirstAirDate     string         `json:"first_air_date"`
	PosterPath       string         `json:"poster_path"`
	BackdropPath     string         `json:"backdrop_path"`
	VoteAverage      float64        `json:"vote_average"`
	NumberOfSeasons  int            `json:"number_of_seasons"`
	NumberOfEpisodes int            `json:"number_of_episodes"`
	InProduction     bool           `json:"in_production"`
	LastAirDate      string         `json:"last_air_date"`
	NextEpisodeToAir *EpisodeRef    `json:"next_episode_to_air"`
	Networks         []NetworkRef   `json:"networks"`
	Status           string         `json:"status"`
	Type             string         `json:"type"`
	Genres           []GenreRef     `json:"genres"`
	Seasons          []SeasonRef    `json:"seasons"`
	ContentRatings   contentRatings `json:"content_ratings"`
	WatchProviders   watchProviders `json:"watch/providers"`
}

// USContentRating returns the US certification, empty when absent.
func (d *ShowDetails) USContentRating() string {
	for _, r := range d.ContentRatings.Results {
		if r.ISO31661 == "US" {
			return r.Rating
		}
	}
	return ""
}

// USProviders returns the US flatrate streaming providers.
func (d *ShowDetails) USProviders() []Provider {
	return d.WatchProviders.Results["US"].Flatrate
}

// Network returns the primary network name.
func (d *ShowDetails) Network() string {
	if len(d.Networks) == 0 {
		return ""
	}
	return d.Networks[0].Name
}

// SeasonDetails carries one season and its full episode list.
type SeasonDetails struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Overview     string       `json:"overview"`
	SeasonNumber int          `json:"season_number"`
	PosterPath   string       `json:"poster_path"`
	AirDate      string       `json:"air_date"`
	Episodes     []EpisodeRef `json:"episodes"`
}

// MovieDetails is the flattened provider payload for one movie.
type MovieDetails struct {
	ID             int            `json:"id"`
	Title          string         `json:"title"`
	Overview       string         `json:"overview"`
	ReleaseDate    string         `json:"release_date"`
	PosterPath     string         `json:"poster_path"`
	BackdropPath   string         `json:"backdrop_path"`
	VoteAverage    float64        `json:"vote_average"`
	Runtime        int            `json:"runtime"`
	Genres         []GenreRef     `json:"genres"`
	ReleaseDates   releaseDates   `json:"release_dates"`
	WatchProviders watchProviders `json:"watch/providers"`
}

// USCertification returns the US certification, empty when absent.
func (d *MovieDetails) USCertification() string {
	for _, r := range d.ReleaseDates.Results {
		if r.ISO31661 != "US" {
			continue
		}
		for _, rd := range r.ReleaseDates {
			if rd.Certification != "" {
				return rd.Certification
			}
		}
	}
	return ""
}

// USProviders returns the US flatrate streaming providers.
func (d *MovieDetails) USProviders() []Provider {
	return d.WatchProviders.Results["US"].Flatrate
}
