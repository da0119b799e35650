package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conte777/mediaflow/internal/domain"
	"github.com/Conte777/mediaflow/internal/domain/download/entities"
	"github.com/Conte777/mediaflow/internal/domain/media"
	"github.com/Conte777/mediaflow/internal/domain/placement"
	pkgerrors "github.com/Conte777/mediaflow/pkg/errors"
)

func defaults() entities.JobConfig {
	return entities.JobConfig{
		Grouping:     placement.GroupingByChatAndType,
		SkipExisting: true,
		Root:         "/downloads",
	}
}

var testTarget = domain.ConversationTarget{Username: "news"}

func TestJobConfig_Defaults(t *testing.T) {
	cfg, err := downloadOptions{types: []string{"all"}}.jobConfig(testTarget, defaults())
	require.NoError(t, err)

	assert.Equal(t, "/downloads", cfg.Root)
	assert.Equal(t, placement.GroupingByChatAndType, cfg.Grouping)
	assert.True(t, cfg.SkipExisting)
	assert.Nil(t, cfg.Constraints.Limit)
	for _, k := range media.AllKinds {
		assert.True(t, cfg.Filters.Allows(k), "kind %s", k)
	}
}

func TestJobConfig_Overrides(t *testing.T) {
	opts := downloadOptions{
		types:        []string{"photo", "video-note"},
		start:        "2024-01-01",
		end:          "2024-01-31",
		limit:        10,
		limitSet:     true,
		dir:          "/tmp/out",
		grouping:     "flat",
		skipExisting: false,
		skipSet:      true,
	}

	cfg, err := opts.jobConfig(testTarget, defaults())
	require.NoError(t, err)

	assert.True(t, cfg.Filters.Allows(media.KindPhoto))
	assert.True(t, cfg.Filters.Allows(media.KindVideoNote))
	assert.False(t, cfg.Filters.Allows(media.KindVideo))
	require.NotNil(t, cfg.Constraints.Limit)
	assert.Equal(t, 10, *cfg.Constraints.Limit)
	assert.Equal(t, "/tmp/out", cfg.Root)
	assert.Equal(t, placement.GroupingFlat, cfg.Grouping)
	assert.False(t, cfg.SkipExisting)

	require.NotNil(t, cfg.Constraints.End)
	assert.Equal(t, 31, cfg.Constraints.End.Day())
	assert.Equal(t, 23, cfg.Constraints.End.Hour())
}

func TestJobConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts downloadOptions
	}{
		{name: "no kinds", opts: downloadOptions{}},
		{name: "unknown kind", opts: downloadOptions{types: []string{"hologram"}}},
		{name: "zero limit", opts: downloadOptions{types: []string{"all"}, limitSet: true}},
		{name: "bad start", opts: downloadOptions{types: []string{"all"}, start: "yesterday"}},
		{name: "bad grouping", opts: downloadOptions{types: []string{"all"}, grouping: "by-size"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.jobConfig(testTarget, defaults())

			var validationErr *pkgerrors.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-03-05T10:00:00Z", true)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)))

	got, err = parseDate("2024-03-05", false)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Hour())

	got, err = parseDate("  ", false)
	require.NoError(t, err)
	assert.Nil(t, got)
}
