package glf

import (
	"math"
	"time"
)

// The Gemini tick epoch is 1980-01-01 00:00:00 UK time, which coincides
// with UTC at that instant, not the Unix epoch. Ticks are fractional
// seconds since then.
var geminiEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// TickTime converts a raw Gemini tick count to a UTC timestamp with
// millisecond resolution.
func TickTime(ticks float64) time.Time {
	ms := int64(math.Round(ticks * 1000.0))
	return geminiEpoch.Add(time.Duration(ms) * time.Millisecond)
}

// TickTimeIn converts a raw Gemini tick count to a timestamp in loc.
// A nil location means UTC.
func TickTimeIn(ticks float64, loc *time.Location) time.Time {
	t := TickTime(ticks)
	if loc == nil {
		return t
	}
	return t.In(loc)
}
