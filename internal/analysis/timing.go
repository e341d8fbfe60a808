package analysis

import (
	"regexp"
	"time"

	"github.com/mail-cci/phishguard/internal/types"
)

var timestampRe = regexp.MustCompile(`\w{3},\s\d{1,2}\s\w{3}\s\d{4}\s\d{2}:\d{2}:\d{2}`)

const timestampLayout = "Mon, 2 Jan 2006 15:04:05"

const (
	minPlausibleDelivery = time.Second
	maxPlausibleDelivery = 24 * time.Hour
)

// extractTimestamps pulls one RFC-2822-style timestamp out of each
// routing hop, in header order. Hops without a parsable timestamp are
// skipped, never treated as anomalies.
func extractTimestamps(receivedHeaders []string) []time.Time {
	var timestamps []time.Time
	for _, header := range receivedHeaders {
		match := timestampRe.FindString(header)
		if match == "" {
			continue
		}
		ts, err := time.Parse(timestampLayout, match)
		if err != nil {
			continue
		}
		timestamps = append(timestamps, ts)
	}
	return timestamps
}

// hasTimeTravel checks hop timestamps for the impossible ordering. With
// newest-first headers each hop must be >= the next one; oldest-first
// flips the comparison. The direction is a configured assumption because
// it varies by MTA.
func hasTimeTravel(timestamps []time.Time, newestFirst bool) bool {
	if len(timestamps) < 2 {
		return false
	}
	for i := 0; i < len(timestamps)-1; i++ {
		if newestFirst {
			if timestamps[i].Before(timestamps[i+1]) {
				return true
			}
		} else {
			if timestamps[i].After(timestamps[i+1]) {
				return true
			}
		}
	}
	return false
}

// totalDeliveryTime is the absolute wall-clock span between the first and
// last parsed timestamps. Returns false when fewer than two parsed.
func totalDeliveryTime(timestamps []time.Time) (time.Duration, bool) {
	if len(timestamps) < 2 {
		return 0, false
	}
	d := timestamps[0].Sub(timestamps[len(timestamps)-1])
	if d < 0 {
		d = -d
	}
	return d, true
}

func suspiciousDelivery(total time.Duration) bool {
	return total < minPlausibleDelivery || total > maxPlausibleDelivery
}

// Timing checks hop timestamps for forged ordering and implausible total
// delivery spans.
func (a *Analyzer) Timing(view *types.MetadataView) *types.Signal {
	timestamps := extractTimestamps(view.ReceivedHeaders)

	travel := hasTimeTravel(timestamps, a.timing.NewestFirst)

	var delivery bool
	var totalSeconds float64
	if total, ok := totalDeliveryTime(timestamps); ok {
		delivery = suspiciousDelivery(total)
		totalSeconds = total.Seconds()
	}

	score := 0.0
	if travel {
		score += 2.5
	}
	if delivery {
		score += 2
	}

	return &types.Signal{
		Module:     ModuleTiming,
		Suspicious: travel || delivery,
		Score:      clamp10(score),
		Flags: map[string]bool{
			"time_travel_detected":     travel,
			"suspicious_delivery_time": delivery,
		},
		Details: map[string]interface{}{
			"timestamp_count":        len(timestamps),
			"total_delivery_seconds": totalSeconds,
		},
	}
}
