// Package sync keeps locally persisted catalog content aligned with the
// upstream provider: a change detector decides whether an item needs a
// refresh, the refresh pipeline rewrites it from fresh details, and the
// cascade extends season and episode changes down the hierarchy and out to
// every profile that favorited the show.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Bingearr/models"
	"Bingearr/services/tmdb"
	"Bingearr/shared/errs"
)

// Lookback windows for the change feeds. Shows are checked daily with a
// little overlap; movies weekly, again with overlap, so a pass that slips
// never leaves a gap.
const (
	showLookback  = 2 * 24 * time.Hour
	movieLookback = 10 * 24 * time.Hour
)

// Kind selects which change feed CheckForChanges consults.
type Kind string

const (
	KindShow  Kind = "show"
	KindMovie Kind = "movie"
)

// Catalog is the upstream provider surface the engine consumes.
type Catalog interface {
	ShowChanges(ctx context.Context, tmdbID int, start, end time.Time) ([]tmdb.ChangeRecord, error)
	SeasonChanges(ctx context.Context, seasonTMDBID int, start, end time.Time) ([]tmdb.ChangeRecord, error)
	MovieChanges(ctx context.Context, tmdbID int, start, end time.Time) ([]tmdb.ChangeRecord, error)
	ShowDetails(ctx context.Context, tmdbID int) (*tmdb.ShowDetails, error)
	SeasonDetails(ctx context.Context, showTMDBID, seasonNumber int) (*tmdb.SeasonDetails, error)
	MovieDetails(ctx context.Context, tmdbID int) (*tmdb.MovieDetails, error)
}

// ContentStore persists catalog content. *Store is the Postgres
// implementation.
type ContentStore interface {
	UpsertShow(ctx context.Context, show *models.Show, genres []models.Genre, services []models.StreamingService) (int, error)
	UpsertSeason(ctx context.Context, season *models.Season) (int, error)
	UpsertEpisodes(ctx context.Context, seasonID, showID int, episodes []models.Episode, profileIDs []int) (int, error)
	UpsertMovie(ctx context.Context, movie *models.Movie, genres []models.Genre, services []models.StreamingService) (int, error)
	InProductionShows(ctx context.Context) ([]models.Show, error)
	FavoritedMovies(ctx context.Context) ([]models.Movie, error)
	ProfilesFavoritingShow(ctx context.Context, showID int) ([]int, error)
	FavoriteSeasonForProfiles(ctx context.Context, seasonID int, profileIDs []int) error
	FavoriteShowRow(ctx context.Context, profileID, showID int) error
	UnfavoriteShow(ctx context.Context, profileID, showID int) error
	FavoriteMovieRow(ctx context.Context, profileID, movieID int) error
	UnfavoriteMovie(ctx context.Context, profileID, movieID int) error
	AccountIDForProfile(ctx context.Context, profileID int) (int, error)
}

// StatusEngine is the slice of the watch-status engine the cascade needs.
type StatusEngine interface {
	DowngradeForNewEpisodes(ctx context.Context, seasonID, showID int) error
}

// Invalidator drops cached aggregates after content mutations.
type Invalidator interface {
	Invalidate(pattern string)
}

// Notifier pushes best-effort events to a signed-in account.
type Notifier interface {
	Notify(accountID int, event string, payload any)
}

// TaskRunner queues background work, used for favorite hierarchy loads.
type TaskRunner interface {
	Submit(name string, fn func(ctx context.Context) error) bool
}

type Service struct {
	catalog  Catalog
	store    ContentStore
	statuses StatusEngine
	cache    Invalidator
	notifier Notifier
	tasks    TaskRunner
}

func NewService(catalog Catalog, store ContentStore, statuses StatusEngine, cache Invalidator, notifier Notifier, tasks TaskRunner) *Service {
	return &Service{
		catalog:  catalog,
		store:    store,
		statuses: statuses,
		cache:    cache,
		notifier: notifier,
		tasks:    tasks,
	}
}

// SyncShows runs one pass over every in-production show. Individual show
// failures are logged and skipped; only a failure to load the working set
// aborts the pass.
func (s *Service) SyncShows(ctx context.Context) error {
	shows, err := s.store.InProductionShows(ctx)
	if err != nil {
		return err
	}
	slog.Info("Show sync pass starting", "shows", len(shows))

	var refreshed, failed int
	for _, show := range shows {
		if ctx.Err() != nil {
			// Shutdown mid-batch is a clean stop, not a pass failure; the
			// next scheduled pass picks up where this one left off.
			slog.Info("Show sync pass interrupted", "refreshed", refreshed, "failed", failed)
			return nil
		}
		changed, err := s.RefreshShowIfChanged(ctx, show.ID, show.TMDBID)
		if err != nil {
			failed++
			slog.Error("Show sync failed", "show_id", show.ID, "tmdb_id", show.TMDBID, "title", show.Title, "error", err)
			continue
		}
		if changed {
			refreshed++
		}
	}
	slog.Info("Show sync pass finished", "shows", len(shows), "refreshed", refreshed, "failed", failed)
	return nil
}

// SyncMovies runs one pass over every favorited movie.
func (s *Service) SyncMovies(ctx context.Context) error {
	movies, err := s.store.FavoritedMovies(ctx)
	if err != nil {
		return err
	}
	slog.Info("Movie sync pass starting", "movies", len(movies))

	var refreshed, failed int
	for _, movie := range movies {
		if ctx.Err() != nil {
			slog.Info("Movie sync pass interrupted", "refreshed", refreshed, "failed", failed)
			return nil
		}
		changed, err := s.RefreshMovieIfChanged(ctx, movie.ID, movie.TMDBID)
		if err != nil {
			failed++
			slog.Error("Movie sync failed", "movie_id", movie.ID, "tmdb_id", movie.TMDBID, "title", movie.Title, "error", err)
			continue
		}
		if changed {
			refreshed++
		}
	}
	slog.Info("Movie sync pass finished", "movies", len(movies), "refreshed", refreshed, "failed", failed)
	return nil
}

// CheckForChanges consults an item's change feed over the lookback window
// and reports whether any relevant change category appears, along with the
// filtered records. It never mutates anything; callers decide whether to
// follow up with a refresh.
func (s *Service) CheckForChanges(ctx context.Context, kind Kind, tmdbID int, lookback time.Duration) (bool, []tmdb.ChangeRecord, error) {
	end := time.Now().UTC()
	start := end.Add(-lookback)

	var records []tmdb.ChangeRecord
	var err error
	switch kind {
	case KindShow:
		records, err = s.catalog.ShowChanges(ctx, tmdbID, start, end)
	case KindMovie:
		records, err = s.catalog.MovieChanges(ctx, tmdbID, start, end)
	default:
		return false, nil, fmt.Errorf("unknown item kind %q", kind)
	}
	if err != nil {
		return false, nil, err
	}
	relevant, ok := filterChanges(records)
	return ok, relevant, nil
}

// RefreshShowIfChanged consults the show's change feed and, when a relevant
// change exists, rewrites the show from fresh details and cascades any
// season-level changes. Returns whether a refresh happened.
func (s *Service) RefreshShowIfChanged(ctx context.Context, showID, tmdbID int) (bool, error) {
	needsRefresh, relevant, err := s.CheckForChanges(ctx, KindShow, tmdbID, showLookback)
	if err != nil {
		return false, err
	}
	if !needsRefresh {
		slog.Debug("No relevant show changes", "tmdb_id", tmdbID)
		return false, nil
	}

	details, err := s.catalog.ShowDetails(ctx, tmdbID)
	if err != nil {
		return false, err
	}
	id, err := s.store.UpsertShow(ctx, mapShow(details), mapGenres(details.Genres), mapProviders(details.USProviders()))
	if err != nil {
		return false, err
	}
	slog.Info("Show refreshed", "show_id", id, "tmdb_id", tmdbID, "title", details.Name)

	// The season probes reuse the same lookback window the detector saw.
	end := time.Now().UTC()
	start := end.Add(-showLookback)
	s.cascadeSeasonChanges(ctx, id, tmdbID, relevant, start, end)
	s.cache.Invalidate("profile:*:shows")
	return true, nil
}

// cascadeSeasonChanges handles each season referenced by the show's change
// feed: refresh the season row, extend favorites to it, and re-pull the
// episode list when the season's own feed shows episode edits. One season
// failing never stops the others.
func (s *Service) cascadeSeasonChanges(ctx context.Context, showID, showTMDBID int, records []tmdb.ChangeRecord, start, end time.Time) {
	seasons := affectedSeasons(records)
	if len(seasons) == 0 {
		return
	}

	profiles, err := s.store.ProfilesFavoritingShow(ctx, showID)
	if err != nil {
		slog.Error("Cascade aborted: favoriting profiles lookup failed", "show_id", showID, "error", err)
		return
	}

	for _, ref := range seasons {
		if err := s.refreshSeason(ctx, showID, showTMDBID, ref, profiles, start, end); err != nil {
			slog.Error("Season cascade failed", "show_id", showID, "season_tmdb_id", ref.SeasonID,
				"season_number", ref.SeasonNumber, "error", err)
		}
	}
}

func (s *Service) refreshSeason(ctx context.Context, showID, showTMDBID int, ref tmdb.ChangeValue, profiles []int, start, end time.Time) error {
	details, err := s.catalog.SeasonDetails(ctx, showTMDBID, ref.SeasonNumber)
	if err != nil {
		return err
	}
	seasonID, err := s.store.UpsertSeason(ctx, mapSeason(showID, details))
	if err != nil {
		return err
	}
	if err := s.store.FavoriteSeasonForProfiles(ctx, seasonID, profiles); err != nil {
		return err
	}

	seasonRecords, err := s.catalog.SeasonChanges(ctx, ref.SeasonID, start, end)
	if err != nil {
		return err
	}
	if !hasEpisodeChanges(seasonRecords) {
		return nil
	}

	episodes := make([]models.Episode, 0, len(details.Episodes))
	for _, e := range details.Episodes {
		episodes = append(episodes, mapEpisode(seasonID, showID, e))
	}
	created, err := s.store.UpsertEpisodes(ctx, seasonID, showID, episodes, profiles)
	if err != nil {
		return err
	}
	slog.Info("Season episodes refreshed", "show_id", showID, "season_id", seasonID,
		"episodes", len(episodes), "new", created)

	if created > 0 {
		// New content demotes WATCHED parents back to WATCHING.
		if err := s.statuses.DowngradeForNewEpisodes(ctx, seasonID, showID); err != nil {
			return err
		}
	}
	return nil
}

// RefreshMovieIfChanged consults the movie's change feed and rewrites the
// movie from fresh details when a relevant change exists.
func (s *Service) RefreshMovieIfChanged(ctx context.Context, movieID, tmdbID int) (bool, error) {
	needsRefresh, _, err := s.CheckForChanges(ctx, KindMovie, tmdbID, movieLookback)
	if err != nil {
		return false, err
	}
	if !needsRefresh {
		slog.Debug("No relevant movie changes", "tmdb_id", tmdbID)
		return false, nil
	}

	details, err := s.catalog.MovieDetails(ctx, tmdbID)
	if err != nil {
		return false, err
	}
	id, err := s.store.UpsertMovie(ctx, mapMovie(details), mapGenres(details.Genres), mapProviders(details.USProviders()))
	if err != nil {
		return false, err
	}
	slog.Info("Movie refreshed", "movie_id", id, "tmdb_id", tmdbID, "title", details.Title)
	s.cache.Invalidate("profile:*:movies")
	return true, nil
}

// FavoriteShow pulls the show, persists it, and marks it favorited for the
// profile. The season and episode hierarchy loads in the background; the
// account gets a notification when it is ready.
func (s *Service) FavoriteShow(ctx context.Context, profileID, tmdbID int) (*models.Show, error) {
	details, err := s.catalog.ShowDetails(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	show := mapShow(details)
	id, err := s.store.UpsertShow(ctx, show, mapGenres(details.Genres), mapProviders(details.USProviders()))
	if err != nil {
		return nil, err
	}
	show.ID = id
	if err := s.store.FavoriteShowRow(ctx, profileID, id); err != nil {
		return nil, err
	}
	s.cache.Invalidate("profile:*:shows")

	seasons := details.Seasons
	if !s.tasks.Submit("favorite-show-hierarchy", func(taskCtx context.Context) error {
		return s.loadFavoriteHierarchy(taskCtx, profileID, id, tmdbID, show.Title, seasons)
	}) {
		slog.Warn("Hierarchy load not queued, task queue full", "show_id", id, "profile_id", profileID)
	}
	return show, nil
}

// loadFavoriteHierarchy fetches every regular season with its episodes and
// creates the profile's status rows. Specials (season 0) are skipped.
func (s *Service) loadFavoriteHierarchy(ctx context.Context, profileID, showID, showTMDBID int, title string, seasons []tmdb.SeasonRef) error {
	profiles := []int{profileID}
	var firstErr error
	for _, ref := range seasons {
		if ref.SeasonNumber == 0 {
			continue
		}
		details, err := s.catalog.SeasonDetails(ctx, showTMDBID, ref.SeasonNumber)
		if err != nil {
			slog.Error("Hierarchy season fetch failed", "show_id", showID, "season_number", ref.SeasonNumber, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		seasonID, err := s.store.UpsertSeason(ctx, mapSeason(showID, details))
		if err != nil {
			slog.Error("Hierarchy season upsert failed", "show_id", showID, "season_number", ref.SeasonNumber, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := s.store.FavoriteSeasonForProfiles(ctx, seasonID, profiles); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		episodes := make([]models.Episode, 0, len(details.Episodes))
		for _, e := range details.Episodes {
			episodes = append(episodes, mapEpisode(seasonID, showID, e))
		}
		if _, err := s.store.UpsertEpisodes(ctx, seasonID, showID, episodes, profiles); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	s.cache.Invalidate("profile:*:shows")
	if accountID, err := s.store.AccountIDForProfile(ctx, profileID); err == nil {
		s.notifier.Notify(accountID, "show_ready", map[string]any{
			"show_id": showID,
			"title":   title,
		})
	}
	return firstErr
}

// UnfavoriteShow drops the profile's status rows for the show hierarchy.
func (s *Service) UnfavoriteShow(ctx context.Context, profileID, showID int) error {
	if err := s.store.UnfavoriteShow(ctx, profileID, showID); err != nil {
		return err
	}
	s.cache.Invalidate("profile:*:shows")
	return nil
}

// FavoriteMovie pulls the movie, persists it, and marks it favorited.
func (s *Service) FavoriteMovie(ctx context.Context, profileID, tmdbID int) (*models.Movie, error) {
	details, err := s.catalog.MovieDetails(ctx, tmdbID)
	if err != nil {
		return nil, err
	}
	movie := mapMovie(details)
	id, err := s.store.UpsertMovie(ctx, movie, mapGenres(details.Genres), mapProviders(details.USProviders()))
	if err != nil {
		return nil, err
	}
	movie.ID = id
	if err := s.store.FavoriteMovieRow(ctx, profileID, id); err != nil {
		return nil, err
	}
	s.cache.Invalidate("profile:*:movies")
	return movie, nil
}

// UnfavoriteMovie drops the profile's status row for the movie.
func (s *Service) UnfavoriteMovie(ctx context.Context, profileID, movieID int) error {
	if err := s.store.UnfavoriteMovie(ctx, profileID, movieID); err != nil {
		return err
	}
	s.cache.Invalidate("profile:*:movies")
	return nil
}

// IsNotFound reports whether err means the upstream no longer knows the item.
func IsNotFound(err error) bool {
	var ext *errs.ExternalServiceError
	return errors.As(err, &ext) && ext.NotFound()
}
