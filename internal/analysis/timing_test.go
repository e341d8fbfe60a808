package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"go.uber.org/zap"

	"github.com/mail-cci/phishguard/internal/config"
	"github.com/mail-cci/phishguard/internal/types"
)

func TestExtractTimestamps(t *testing.T) {
	headers := []string{
		"from mx.example.com by mail; Mon, 2 Jan 2023 15:04:10 +0000",
		"from client by mx.example.com; Mon, 2 Jan 2023 15:04:05 +0000",
		"from garbled header without a date",
	}

	timestamps := extractTimestamps(headers)
	assert.Len(t, timestamps, 2, "unparsable hops are skipped, not flagged")
	assert.True(t, timestamps[0].After(timestamps[1]))
}

func TestHasTimeTravel(t *testing.T) {
	newer := time.Date(2023, 1, 2, 15, 4, 10, 0, time.UTC)
	older := time.Date(2023, 1, 2, 15, 4, 5, 0, time.UTC)

	t.Run("newest first ordering", func(t *testing.T) {
		assert.False(t, hasTimeTravel([]time.Time{newer, older}, true))
		assert.True(t, hasTimeTravel([]time.Time{older, newer}, true))
	})

	t.Run("oldest first ordering", func(t *testing.T) {
		assert.False(t, hasTimeTravel([]time.Time{older, newer}, false))
		assert.True(t, hasTimeTravel([]time.Time{newer, older}, false))
	})

	t.Run("fewer than two timestamps never fires", func(t *testing.T) {
		assert.False(t, hasTimeTravel(nil, true))
		assert.False(t, hasTimeTravel([]time.Time{newer}, true))
	})
}

func TestTiming(t *testing.T) {
	a := newTestAnalyzer()

	t.Run("ordinary delivery", func(t *testing.T) {
		signal := a.Timing(&types.MetadataView{ReceivedHeaders: []string{
			"by mail; Mon, 2 Jan 2023 15:05:00 +0000",
			"by mx; Mon, 2 Jan 2023 15:04:05 +0000",
		}})
		assert.False(t, signal.Suspicious)
	})

	t.Run("time travel between hops", func(t *testing.T) {
		signal := a.Timing(&types.MetadataView{ReceivedHeaders: []string{
			"by mail; Mon, 2 Jan 2023 15:04:05 +0000",
			"by mx; Mon, 2 Jan 2023 15:05:00 +0000",
		}})
		assert.True(t, signal.Suspicious)
		assert.True(t, signal.Flag("time_travel_detected"))
	})

	t.Run("implausibly long delivery", func(t *testing.T) {
		signal := a.Timing(&types.MetadataView{ReceivedHeaders: []string{
			"by mail; Wed, 4 Jan 2023 15:04:05 +0000",
			"by mx; Mon, 2 Jan 2023 15:04:05 +0000",
		}})
		assert.True(t, signal.Flag("suspicious_delivery_time"))
	})

	t.Run("no parsable timestamps", func(t *testing.T) {
		signal := a.Timing(&types.MetadataView{ReceivedHeaders: []string{
			"from somewhere by something",
		}})
		assert.False(t, signal.Suspicious)
		assert.Zero(t, signal.Score)
	})
}

func TestTimingDirectionIsConfigurable(t *testing.T) {
	headers := []string{
		"by mx; Mon, 2 Jan 2023 15:04:05 +0000",
		"by mail; Mon, 2 Jan 2023 15:05:00 +0000",
	}

	newestFirst := New(config.DefaultRules(), config.TimingConfig{NewestFirst: true}, nil, zap.NewNop())
	oldestFirst := New(config.DefaultRules(), config.TimingConfig{NewestFirst: false}, nil, zap.NewNop())

	assert.True(t, newestFirst.Timing(&types.MetadataView{ReceivedHeaders: headers}).Flag("time_travel_detected"))
	assert.False(t, oldestFirst.Timing(&types.MetadataView{ReceivedHeaders: headers}).Flag("time_travel_detected"))
}
