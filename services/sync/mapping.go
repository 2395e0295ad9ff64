package sync

import (
	"encoding/json"
	"time"

	"Bingearr/models"
	"Bingearr/services/tmdb"
)

func parseAirDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func mapShow(d *tmdb.ShowDetails) *models.Show {
	raw, _ := json.Marshal(d)
	show := &models.Show{
		TMDBID:        d.ID,
		Title:         d.Name,
		Overview:      d.Overview,
		ReleaseDate:   parseAirDate(d.FirstAirDate),
		PosterPath:    d.PosterPath,
		BackdropPath:  d.BackdropPath,
		UserRating:    d.VoteAverage,
		ContentRating: d.USContentRating(),
		SeasonCount:   d.NumberOfSeasons,
		EpisodeCount:  d.NumberOfEpisodes,
		InProduction:  d.InProduction,
		LastAirDate:   parseAirDate(d.LastAirDate),
		Network:       d.Network(),
		Status:        d.Status,
		ShowType:      d.Type,
		RawMetadata:   raw,
	}
	if next := d.NextEpisodeToAir; next != nil {
		show.NextAirDate = parseAirDate(next.AirDate)
	}
	for _, g := range d.Genres {
		show.GenreIDs = append(show.GenreIDs, g.ID)
	}
	for _, p := range d.USProviders() {
		show.ServiceIDs = append(show.ServiceIDs, p.ProviderID)
	}
	return show
}

func mapSeason(showID int, d *tmdb.SeasonDetails) *models.Season {
	return &models.Season{
		ShowID:       showID,
		TMDBID:       d.ID,
		Name:         d.Name,
		Overview:     d.Overview,
		SeasonNumber: d.SeasonNumber,
		EpisodeCount: len(d.Episodes),
		PosterPath:   d.PosterPath,
		AirDate:      parseAirDate(d.AirDate),
	}
}

func mapEpisode(seasonID, showID int, e tmdb.EpisodeRef) models.Episode {
	return models.Episode{
		TMDBID:        e.ID,
		SeasonID:      seasonID,
		ShowID:        showID,
		EpisodeNumber: e.EpisodeNumber,
		EpisodeType:   e.EpisodeType,
		SeasonNumber:  e.SeasonNumber,
		Title:         e.Name,
		Overview:      e.Overview,
		AirDate:       parseAirDate(e.AirDate),
		Runtime:       e.Runtime,
		StillPath:     e.StillPath,
	}
}

func mapMovie(d *tmdb.MovieDetails) *models.Movie {
	raw, _ := json.Marshal(d)
	movie := &models.Movie{
		TMDBID:        d.ID,
		Title:         d.Title,
		Overview:      d.Overview,
		ReleaseDate:   parseAirDate(d.ReleaseDate),
		PosterPath:    d.PosterPath,
		BackdropPath:  d.BackdropPath,
		UserRating:    d.VoteAverage,
		ContentRating: d.USCertification(),
		Runtime:       d.Runtime,
		RawMetadata:   raw,
	}
	for _, g := range d.Genres {
		movie.GenreIDs = append(movie.GenreIDs, g.ID)
	}
	for _, p := range d.USProviders() {
		movie.ServiceIDs = append(movie.ServiceIDs, p.ProviderID)
	}
	return movie
}

// mapGenres and mapProviders feed the reference-table upserts so the join
// tables always point at named rows.
func mapGenres(gs []tmdb.GenreRef) []models.Genre {
	out := make([]models.Genre, 0, len(gs))
	for _, g := range gs {
		out = append(out, models.Genre{ID: g.ID, Name: g.Name})
	}
	return out
}

func mapProviders(ps []tmdb.Provider) []models.StreamingService {
	out := make([]models.StreamingService, 0, len(ps))
	for _, p := range ps {
		out = append(out, models.StreamingService{ID: p.ProviderID, Name: p.ProviderName, LogoPath: p.LogoPath})
	}
	return out
}
