package database

import (
	"fmt"
)

func RunMigrations() error {
	accountsSQL := `
	CREATE TABLE IF NOT EXISTS accounts (
		id SERIAL PRIMARY KEY,
		username VARCHAR(255) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_admin BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS profiles (
		id SERIAL PRIMARY KEY,
		account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		image_path VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(account_id, name)
	);
	`
	if _, err := DB.Exec(accountsSQL); err != nil {
		return fmt.Errorf("failed to run accounts migration: %w", err)
	}

	catalogSQL := `
	CREATE TABLE IF NOT EXISTS genres (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS streaming_services (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		logo_path VARCHAR(255)
	);

	CREATE TABLE IF NOT EXISTS shows (
		id SERIAL PRIMARY KEY,
		tmdb_id INTEGER UNIQUE NOT NULL,
		title VARCHAR(255) NOT NULL,
		overview TEXT,
		release_date DATE,
		poster_path VARCHAR(255),
		backdrop_path VARCHAR(255),
		user_rating DOUBLE PRECISION DEFAULT 0,
		content_rating VARCHAR(50),
		season_count INTEGER DEFAULT 0,
		episode_count INTEGER DEFAULT 0,
		in_production BOOLEAN DEFAULT FALSE,
		last_air_date DATE,
		next_air_date DATE,
		network VARCHAR(255),
		status VARCHAR(50),
		show_type VARCHAR(50),
		raw_metadata JSONB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS show_genres (
		show_id INTEGER NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
		PRIMARY KEY (show_id, genre_id)
	);

	CREATE TABLE IF NOT EXISTS show_services (
		show_id INTEGER NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		service_id INTEGER NOT NULL REFERENCES streaming_services(id) ON DELETE CASCADE,
		PRIMARY KEY (show_id, service_id)
	);

	CREATE TABLE IF NOT EXISTS seasons (
		id SERIAL PRIMARY KEY,
		show_id INTEGER NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		tmdb_id INTEGER UNIQUE NOT NULL,
		name VARCHAR(255),
		overview TEXT,
		season_number INTEGER NOT NULL,
		episode_count INTEGER DEFAULT 0,
		poster_path VARCHAR(255),
		air_date DATE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(show_id, season_number)
	);

	CREATE TABLE IF NOT EXISTS episodes (
		id SERIAL PRIMARY KEY,
		tmdb_id INTEGER UNIQUE NOT NULL,
		season_id INTEGER NOT NULL REFERENCES seasons(id) ON DELETE CASCADE,
		show_id INTEGER NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		episode_number INTEGER NOT NULL,
		episode_type VARCHAR(50),
		season_number INTEGER NOT NULL,
		title VARCHAR(255),
		overview TEXT,
		air_date DATE,
		runtime INTEGER DEFAULT 0,
		still_path VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(season_id, episode_number)
	);

	CREATE TABLE IF NOT EXISTS movies (
		id SERIAL PRIMARY KEY,
		tmdb_id INTEGER UNIQUE NOT NULL,
		title VARCHAR(255) NOT NULL,
		overview TEXT,
		release_date DATE,
		poster_path VARCHAR(255),
		backdrop_path VARCHAR(255),
		user_rating DOUBLE PRECISION DEFAULT 0,
		content_rating VARCHAR(50),
		runtime INTEGER DEFAULT 0,
		raw_metadata JSONB,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS movie_genres (
		movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		genre_id INTEGER NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
		PRIMARY KEY (movie_id, genre_id)
	);

	CREATE TABLE IF NOT EXISTS movie_services (
		movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		service_id INTEGER NOT NULL REFERENCES streaming_services(id) ON DELETE CASCADE,
		PRIMARY KEY (movie_id, service_id)
	);
	`
	if _, err := DB.Exec(catalogSQL); err != nil {
		return fmt.Errorf("failed to run catalog migrations: %w", err)
	}

	watchStatusSQL := `
	CREATE TABLE IF NOT EXISTS show_watch_status (
		profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		show_id INTEGER NOT NULL REFERENCES shows(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'NOT_WATCHED'
			CHECK (status IN ('NOT_WATCHED', 'WATCHING', 'WATCHED')),
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile_id, show_id)
	);

	CREATE TABLE IF NOT EXISTS season_watch_status (
		profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		season_id INTEGER NOT NULL REFERENCES seasons(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'NOT_WATCHED'
			CHECK (status IN ('NOT_WATCHED', 'WATCHING', 'WATCHED')),
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile_id, season_id)
	);

	CREATE TABLE IF NOT EXISTS episode_watch_status (
		profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		episode_id INTEGER NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'NOT_WATCHED'
			CHECK (status IN ('NOT_WATCHED', 'WATCHING', 'WATCHED')),
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile_id, episode_id)
	);

	CREATE TABLE IF NOT EXISTS movie_watch_status (
		profile_id INTEGER NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
		movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'NOT_WATCHED'
			CHECK (status IN ('NOT_WATCHED', 'WATCHING', 'WATCHED')),
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (profile_id, movie_id)
	);

	CREATE INDEX IF NOT EXISTS idx_episodes_show_id ON episodes(show_id);
	CREATE INDEX IF NOT EXISTS idx_seasons_show_id ON seasons(show_id);
	CREATE INDEX IF NOT EXISTS idx_season_status_season ON season_watch_status(season_id);
	CREATE INDEX IF NOT EXISTS idx_episode_status_episode ON episode_watch_status(episode_id);
	`
	if _, err := DB.Exec(watchStatusSQL); err != nil {
		return fmt.Errorf("failed to run watch status migrations: %w", err)
	}

	return nil
}
