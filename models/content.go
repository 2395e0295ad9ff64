package models

import "time"

type Show struct {
	ID            int        `json:"id"`
	TMDBID        int        `json:"tmdb_id"`
	Title         string     `json:"title"`
	Overview      string     `json:"overview"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	PosterPath    string     `json:"poster_path,omitempty"`
	BackdropPath  string     `json:"backdrop_path,omitempty"`
	UserRating    float64    `json:"user_rating"`
	ContentRating string     `json:"content_rating,omitempty"`
	SeasonCount   int        `json:"season_count"`
	EpisodeCount  int        `json:"episode_count"`
	InProduction  bool       `json:"in_production"`
	LastAirDate   *time.Time `json:"last_air_date,omitempty"`
	NextAirDate   *time.Time `json:"next_air_date,omitempty"`
	Network       string     `json:"network,omitempty"`
	Status        string     `json:"status,omitempty"`
	ShowType      string     `json:"show_type,omitempty"`
	GenreIDs      []int      `json:"genre_ids,omitempty"`
	ServiceIDs    []int      `json:"service_ids,omitempty"`
	RawMetadata   []byte     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Season struct {
	ID           int        `json:"id"`
	ShowID       int        `json:"show_id"`
	TMDBID       int        `json:"tmdb_id"`
	Name         string     `json:"name"`
	Overview     string     `json:"overview"`
	SeasonNumber int        `json:"season_number"`
	EpisodeCount int        `json:"episode_count"`
	PosterPath   string     `json:"poster_path,omitempty"`
	AirDate      *time.Time `json:"air_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Episode struct {
	ID            int        `json:"id"`
	TMDBID        int        `json:"tmdb_id"`
	SeasonID      int        `json:"season_id"`
	ShowID        int        `json:"show_id"`
	EpisodeNumber int        `json:"episode_number"`
	EpisodeType   string     `json:"episode_type,omitempty"`
	SeasonNumber  int        `json:"season_number"`
	Title         string     `json:"title"`
	Overview      string     `json:"overview,omitempty"`
	AirDate       *time.Time `json:"air_date,omitempty"`
	Runtime       int        `json:"runtime"`
	StillPath     string     `json:"still_path,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Movie struct {
	ID            int        `json:"id"`
	TMDBID        int        `json:"tmdb_id"`
	Title         string     `json:"title"`
	Overview      string     `json:"overview"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	PosterPath    string     `json:"poster_path,omitempty"`
	BackdropPath  string     `json:"backdrop_path,omitempty"`
	UserRating    float64    `json:"user_rating"`
	ContentRating string     `json:"content_rating,omitempty"`
	Runtime       int        `json:"runtime"`
	GenreIDs      []int      `json:"genre_ids,omitempty"`
	ServiceIDs    []int      `json:"service_ids,omitempty"`
	RawMetadata   []byte     `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type StreamingService struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LogoPath string `json:"logo_path,omitempty"`
}
