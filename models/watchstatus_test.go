package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWatchStatus(t *testing.T) {
	for _, valid := range []string{"NOT_WATCHED", "WATCHING", "WATCHED"} {
		got, err := ParseWatchStatus(valid)
		assert.NoError(t, err)
		assert.Equal(t, WatchStatus(valid), got)
	}

	for _, invalid := range []string{"", "watched", "DONE", "WATCHED "} {
		_, err := ParseWatchStatus(invalid)
		assert.Error(t, err, invalid)
	}
}
