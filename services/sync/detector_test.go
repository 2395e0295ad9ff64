package sync

import (
	"testing"

	"Bingearr/services/tmdb"

	"github.com/stretchr/testify/assert"
)

func TestFilterChanges(t *testing.T) {
	records := []tmdb.ChangeRecord{
		{Key: "overview"},
		{Key: "crew"},
		{Key: "translations"},
		{Key: "season"},
		{Key: "tagline"},
	}

	kept, ok := filterChanges(records)

	assert.True(t, ok)
	assert.Len(t, kept, 2)
	assert.Equal(t, "overview", kept[0].Key)
	assert.Equal(t, "season", kept[1].Key)
}

func TestFilterChangesNothingRelevant(t *testing.T) {
	records := []tmdb.ChangeRecord{
		{Key: "crew"},
		{Key: "cast"},
		{Key: "videos"},
	}

	kept, ok := filterChanges(records)

	assert.False(t, ok)
	assert.Empty(t, kept)
}

func TestFilterChangesEmptyFeed(t *testing.T) {
	kept, ok := filterChanges(nil)
	assert.False(t, ok)
	assert.Empty(t, kept)
}

func TestAffectedSeasonsDeduplicates(t *testing.T) {
	records := []tmdb.ChangeRecord{
		{Key: "season", Items: []tmdb.ChangeItem{
			{Value: tmdb.ChangeValue{SeasonID: 100, SeasonNumber: 1}},
			{Value: tmdb.ChangeValue{SeasonID: 100, SeasonNumber: 1}},
			{Value: tmdb.ChangeValue{SeasonID: 101, SeasonNumber: 2}},
		}},
		{Key: "overview"},
	}

	seasons := affectedSeasons(records)

	assert.Len(t, seasons, 2)
	assert.Equal(t, 100, seasons[0].SeasonID)
	assert.Equal(t, 101, seasons[1].SeasonID)
}

func TestAffectedSeasonsSkipsSpecials(t *testing.T) {
	records := []tmdb.ChangeRecord{
		{Key: "season", Items: []tmdb.ChangeItem{
			{Value: tmdb.ChangeValue{SeasonID: 200, SeasonNumber: 0}},
			{Value: tmdb.ChangeValue{SeasonID: 201, SeasonNumber: 3}},
		}},
	}

	seasons := affectedSeasons(records)

	assert.Len(t, seasons, 1)
	assert.Equal(t, 3, seasons[0].SeasonNumber)
}

func TestAffectedSeasonsIgnoresScalarValues(t *testing.T) {
	// Scalar change values decode to zero season ids and must not produce
	// cascade work.
	records := []tmdb.ChangeRecord{
		{Key: "season", Items: []tmdb.ChangeItem{
			{Value: tmdb.ChangeValue{}},
		}},
	}

	assert.Empty(t, affectedSeasons(records))
}

func TestHasEpisodeChanges(t *testing.T) {
	assert.True(t, hasEpisodeChanges([]tmdb.ChangeRecord{{Key: "episode"}}))
	assert.True(t, hasEpisodeChanges([]tmdb.ChangeRecord{{Key: "air_date"}}))
	assert.False(t, hasEpisodeChanges([]tmdb.ChangeRecord{{Key: "overview"}, {Key: "images"}}))
	assert.False(t, hasEpisodeChanges(nil))
}
