package services

import (
	"database/sql"
	"fmt"

	"Bingearr/database"
	"Bingearr/models"
)

func GetProfilesForAccount(accountID int) ([]models.Profile, error) {
	rows, err := database.DB.Query(
		"SELECT id, account_id, name, COALESCE(image_path, ''), created_at, updated_at FROM profiles WHERE account_id = $1 ORDER BY id",
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func CreateProfile(accountID int, name string) (*models.Profile, error) {
	var p models.Profile
	err := database.DB.QueryRow(
		"INSERT INTO profiles (account_id, name) VALUES ($1, $2) RETURNING id, account_id, name, COALESCE(image_path, ''), created_at, updated_at",
		accountID, name,
	).Scan(&p.ID, &p.AccountID, &p.Name, &p.ImagePath, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &p, nil
}

func DeleteProfile(accountID, profileID int) error {
	res, err := database.DB.Exec(
		"DELETE FROM profiles WHERE id = $1 AND account_id = $2",
		profileID, accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile not found")
	}
	return nil
}

// ProfileBelongsToAccount guards profile-scoped endpoints against cross-account
// access.
func ProfileBelongsToAccount(profileID, accountID int) (bool, error) {
	var id int
	err := database.DB.QueryRow(
		"SELECT id FROM profiles WHERE id = $1 AND account_id = $2",
		profileID, accountID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return true, nil
}

// ProfileShow is a show joined with the profile's watch status.
type ProfileShow struct {
	models.Show
	WatchStatus models.WatchStatus `json:"watch_status"`
}

// ProfileMovie is a movie joined with the profile's watch status.
type ProfileMovie struct {
	models.Movie
	WatchStatus models.WatchStatus `json:"watch_status"`
}

func GetProfileShows(profileID int) ([]ProfileShow, error) {
	rows, err := database.DB.Query(
		`SELECT s.id, s.tmdb_id, s.title, s.overview, s.release_date,
			COALESCE(s.poster_path, ''), COALESCE(s.backdrop_path, ''), s.user_rating,
			COALESCE(s.content_rating, ''), s.season_count, s.episode_count, s.in_production,
			s.last_air_date, s.next_air_date, COALESCE(s.network, ''), COALESCE(s.status, ''),
			COALESCE(s.show_type, ''), sws.status
		 FROM shows s
		 JOIN show_watch_status sws ON sws.show_id = s.id
		 WHERE sws.profile_id = $1
		 ORDER BY s.title`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var shows []ProfileShow
	for rows.Next() {
		var ps ProfileShow
		err := rows.Scan(
			&ps.ID, &ps.TMDBID, &ps.Title, &ps.Overview, &ps.ReleaseDate,
			&ps.PosterPath, &ps.BackdropPath, &ps.UserRating,
			&ps.ContentRating, &ps.SeasonCount, &ps.EpisodeCount, &ps.InProduction,
			&ps.LastAirDate, &ps.NextAirDate, &ps.Network, &ps.Status,
			&ps.ShowType, &ps.WatchStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		shows = append(shows, ps)
	}
	return shows, rows.Err()
}

func GetProfileMovies(profileID int) ([]ProfileMovie, error) {
	rows, err := database.DB.Query(
		`SELECT m.id, m.tmdb_id, m.title, m.overview, m.release_date,
			COALESCE(m.poster_path, ''), COALESCE(m.backdrop_path, ''), m.user_rating,
			COALESCE(m.content_rating, ''), m.runtime, mws.status
		 FROM movies m
		 JOIN movie_watch_status mws ON mws.movie_id = m.id
		 WHERE mws.profile_id = $1
		 ORDER BY m.title`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var movies []ProfileMovie
	for rows.Next() {
		var pm ProfileMovie
		err := rows.Scan(
			&pm.ID, &pm.TMDBID, &pm.Title, &pm.Overview, &pm.ReleaseDate,
			&pm.PosterPath, &pm.BackdropPath, &pm.UserRating,
			&pm.ContentRating, &pm.Runtime, &pm.WatchStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		movies = append(movies, pm)
	}
	return movies, rows.Err()
}
