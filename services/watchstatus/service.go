// Package watchstatus keeps the tri-state watch status consistent across the
// Show → Season → Episode hierarchy. Two primitives cover everything:
// rollout (force a status down onto descendants) and rollup (derive a parent
// status from its children). Every mutation runs in one transaction so a
// crash never leaves the hierarchy half-updated.
package watchstatus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"Bingearr/models"
	"Bingearr/shared/errs"
)

type Engine struct {
	db *sql.DB
}

func NewEngine(db *sql.DB) *Engine {
	return &Engine{db: db}
}

func (e *Engine) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Persistence(op, err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.Error("Rollback failed", "op", op, "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errs.Persistence(op, err)
	}
	return nil
}

// SetShowStatus sets the status on a show the profile favorited. With
// recursive it also overwrites every season and episode status the profile
// holds under that show, all in one transaction.
func (e *Engine) SetShowStatus(ctx context.Context, profileID, showID int, status models.WatchStatus, recursive bool) error {
	op := "watchstatus: set show status"
	return e.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE show_watch_status
			 SET status = $1, updated_at = CURRENT_TIMESTAMP
			 WHERE profile_id = $2 AND show_id = $3`,
			status, profileID, showID)
		if err != nil {
			return errs.Persistence(op, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("show %d, profile %d: %w", showID, profileID, errs.ErrNotFavorited)
		}
		if !recursive {
			return nil
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE season_watch_status sws
			 SET status = $1, updated_at = CURRENT_TIMESTAMP
			 FROM seasons s
			 WHERE sws.season_id = s.id AND s.show_id = $2 AND sws.profile_id = $3`,
			status, showID, profileID)
		if err != nil {
			return errs.Persistence(op, err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE episode_watch_status ews
			 SET status = $1, updated_at = CURRENT_TIMESTAMP
			 FROM episodes e
			 WHERE ews.episode_id = e.id AND e.show_id = $2 AND ews.profile_id = $3`,
			status, showID, profileID)
		if err != nil {
			return errs.Persistence(op, err)
		}
		return nil
	})
}

// SetSeasonStatus sets the status on a favorited season, optionally rolling
// it out to the season's episodes, then re-derives the owning show's status.
func (e *Engine) SetSeasonStatus(ctx context.Context, profileID, seasonID int, status models.WatchStatus, recursive bool) error {
	op := "watchstatus: set season status"
	return e.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE season_watch_status
			 SET status = $1, updated_at = CURRENT_TIMESTAMP
			 WHERE profile_id = $2 AND season_id = $3`,
			status, profileID, seasonID)
		if err != nil {
			return errs.Persistence(op, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("season %d, profile %d: %w", seasonID, profileID, errs.ErrNotFavorited)
		}

		if recursive {
			_, err = tx.ExecContext(ctx,
				`UPDATE episode_watch_status ews
				 SET status = $1, updated_at = CURRENT_TIMESTAMP
				 FROM episodes e
				 WHERE ews.episode_id = e.id AND e.season_id = $2 AND ews.profile_id = $3`,
				status, seasonID, profileID)
			if err != nil {
				return errs.Persistence(op, err)
			}
		}

		var showID int
		if err := tx.QueryRowContext(ctx, `SELECT show_id FROM seasons WHERE id = $1`, seasonID).Scan(&showID); err != nil {
			return errs.Persistence(op, err)
		}
		return e.rollupShowTx(ctx, tx, profileID, showID)
	})
}

// SetEpisodeStatus sets the status on a favorited episode and re-derives the
// season and show statuses in the same transaction.
func (e *Engine) SetEpisodeStatus(ctx context.Context, profileID, episodeID int, status models.WatchStatus) error {
	op := "watchstatus: set episode status"
	return e.withTx(ctx, op, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE episode_watch_status
			 SET status = $1, updated_at = CURRENT_TIMESTAMP
			 WHERE profile_id = $2 AND episode_id = $3`,
			status, profileID, episodeID)
		if err != nil {
			return errs.Persistence(op, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("episode %d, profile %d: %w", episodeID, profileID, errs.ErrNotFavorited)
		}

		var seasonID, showID int
		if err := tx.QueryRowContext(ctx, `SELECT season_id, show_id FROM episodes WHERE id = $1`, episodeID).Scan(&seasonID, &showID); err != nil {
			return errs.Persistence(op, err)
		}
		if err := e.rollupSeasonTx(ctx, tx, profileID, seasonID); err != nil {
			return err
		}
		return e.rollupShowTx(ctx, tx, profileID, showID)
	})
}

// SetMovieStatus sets the status on a favorited movie. Movies have no
// children, so there is nothing to cascade.
func (e *Engine) SetMovieStatus(ctx context.Context, profileID, movieID int, status models.WatchStatus) error {
	op := "watchstatus: set movie status"
	res, err := e.db.ExecContext(ctx,
		`UPDATE movie_watch_status
		 SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE profile_id = $2 AND movie_id = $3`,
		status, profileID, movieID)
	if err != nil {
		return errs.Persistence(op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("movie %d, profile %d: %w", movieID, profileID, errs.ErrNotFavorited)
	}
	return nil
}

// RollupSeason re-derives a season's status from its episode statuses.
func (e *Engine) RollupSeason(ctx context.Context, profileID, seasonID int) error {
	return e.withTx(ctx, "watchstatus: rollup season", func(tx *sql.Tx) error {
		return e.rollupSeasonTx(ctx, tx, profileID, seasonID)
	})
}

// RollupShow re-derives a show's status from its season statuses.
func (e *Engine) RollupShow(ctx context.Context, profileID, showID int) error {
	return e.withTx(ctx, "watchstatus: rollup show", func(tx *sql.Tx) error {
		return e.rollupShowTx(ctx, tx, profileID, showID)
	})
}

func (e *Engine) rollupSeasonTx(ctx context.Context, tx *sql.Tx, profileID, seasonID int) error {
	op := "watchstatus: rollup season"
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT ews.status
		 FROM episode_watch_status ews
		 JOIN episodes e ON ews.episode_id = e.id
		 WHERE ews.profile_id = $1 AND e.season_id = $2`,
		profileID, seasonID)
	if err != nil {
		return errs.Persistence(op, err)
	}
	derived, ok, err := deriveFromRows(rows)
	if err != nil {
		return errs.Persistence(op, err)
	}
	if !ok {
		return nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE season_watch_status
		 SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE profile_id = $2 AND season_id = $3`,
		derived, profileID, seasonID)
	return errs.Persistence(op, err)
}

func (e *Engine) rollupShowTx(ctx context.Context, tx *sql.Tx, profileID, showID int) error {
	op := "watchstatus: rollup show"
	rows, err := tx.QueryContext(ctx,
		`SELECT DISTINCT sws.status
		 FROM season_watch_status sws
		 JOIN seasons s ON sws.season_id = s.id
		 WHERE sws.profile_id = $1 AND s.show_id = $2`,
		profileID, showID)
	if err != nil {
		return errs.Persistence(op, err)
	}
	derived, ok, err := deriveFromRows(rows)
	if err != nil {
		return errs.Persistence(op, err)
	}
	if !ok {
		return nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE show_watch_status
		 SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE profile_id = $2 AND show_id = $3`,
		derived, profileID, showID)
	return errs.Persistence(op, err)
}

func deriveFromRows(rows *sql.Rows) (models.WatchStatus, bool, error) {
	defer rows.Close()
	var statuses []models.WatchStatus
	for rows.Next() {
		var s models.WatchStatus
		if err := rows.Scan(&s); err != nil {
			return "", false, err
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return "", false, err
	}
	derived, ok := Derive(statuses)
	return derived, ok, nil
}

// Derive computes a parent status from its children's distinct statuses:
// one distinct value wins outright, several mean partial progress, and with
// no child rows the parent is left untouched (ok == false).
func Derive(distinct []models.WatchStatus) (models.WatchStatus, bool) {
	switch len(distinct) {
	case 0:
		return "", false
	case 1:
		return distinct[0], true
	default:
		return models.Watching, true
	}
}

// DowngradeForNewEpisodes demotes WATCHED to WATCHING on a season and its
// show for every profile, because freshly inserted episodes mean unwatched
// content now exists. Runs after the cascade commits an episode batch.
func (e *Engine) DowngradeForNewEpisodes(ctx context.Context, seasonID, showID int) error {
	op := "watchstatus: new-content downgrade"
	return e.withTx(ctx, op, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE season_watch_status
			 SET status = $1, updated_at = CURRENT_TIMESTAMP
			 WHERE season_id = $2 AND status = $3`,
			models.Watching, seasonID, models.Watched)
		if err != nil {
			return errs.Persistence(op, err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE show_watch_status
			 SET status = $1, updated_at = CURRENT_TIMESTAMP
			 WHERE show_id = $2 AND status = $3`,
			models.Watching, showID, models.Watched)
		if err != nil {
			return errs.Persistence(op, err)
		}
		return nil
	})
}
