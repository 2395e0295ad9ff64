package sync

import "Bingearr/services/tmdb"

// relevantKeys is the set of upstream change categories that affect data we
// persist. Everything else (credits, translations, tagline edits, ...) is
// noise and never triggers a refresh.
var relevantKeys = map[string]bool{
	"air_date":         true,
	"episode":          true,
	"episodes":         true,
	"episode_number":   true,
	"episode_run_time": true,
	"general":          true,
	"genres":           true,
	"images":           true,
	"name":             true,
	"network":          true,
	"overview":         true,
	"runtime":          true,
	"season":           true,
	"seasons":          true,
	"season_number":    true,
	"status":           true,
	"title":            true,
	"type":             true,
}

// filterChanges keeps only the change records whose category is relevant.
// The second return is false when nothing survives, meaning the item does
// not need a refresh.
func filterChanges(records []tmdb.ChangeRecord) ([]tmdb.ChangeRecord, bool) {
	var kept []tmdb.ChangeRecord
	for _, r := range records {
		if relevantKeys[r.Key] {
			kept = append(kept, r)
		}
	}
	return kept, len(kept) > 0
}

// affectedSeasons extracts the distinct (season external id, season number)
// pairs referenced by season change records, skipping specials (season 0).
// Order follows first appearance so the cascade is deterministic.
func affectedSeasons(records []tmdb.ChangeRecord) []tmdb.ChangeValue {
	seen := map[int]bool{}
	var out []tmdb.ChangeValue
	for _, r := range records {
		if r.Key != "season" && r.Key != "seasons" {
			continue
		}
		for _, item := range r.Items {
			v := item.Value
			if v.SeasonID == 0 || seen[v.SeasonID] {
				continue
			}
			if v.SeasonNumber == 0 {
				continue
			}
			seen[v.SeasonID] = true
			out = append(out, v)
		}
	}
	return out
}

// hasEpisodeChanges reports whether a season's own change feed references
// episode-level edits, which is the cue to re-pull the episode list.
func hasEpisodeChanges(records []tmdb.ChangeRecord) bool {
	for _, r := range records {
		switch r.Key {
		case "episode", "episodes", "episode_number", "air_date", "episode_run_time":
			return true
		}
	}
	return false
}
