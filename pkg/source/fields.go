package source

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/soundprediction/reviewgraph/pkg/types"
)

// Field aliases, in lookup order. The first key present wins even when its
// value is empty.
var (
	RatingKeys    = []string{"overall", "rating"}
	TextKeys      = []string{"reviewtext", "text", "selftext"}
	SummaryKeys   = []string{"summary", "title"}
	TimestampKeys = []string{"unixreviewtime", "timestamp", "created_utc"}
)

// DefaultRating is used when no rating column is present or it does not parse.
const DefaultRating = 3.0

// millisThreshold separates epoch seconds from epoch milliseconds.
const millisThreshold = 1e11

type row map[string]any

func lowerKeys(m map[string]any) row {
	out := make(row, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func (r row) lookup(keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func (r row) str(keys []string) string {
	v, ok := r.lookup(keys)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func (r row) rating() float64 {
	v, ok := r.lookup(RatingKeys)
	if !ok {
		return DefaultRating
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return DefaultRating
	}
	return f
}

func (r row) timestamp() *time.Time {
	v, ok := r.lookup(TimestampKeys)
	if !ok || v == nil {
		return nil
	}
	return ParseTimestamp(v)
}

func (r row) record(index int, source string) types.Record {
	return types.Record{
		Index:     index,
		Source:    source,
		Rating:    r.rating(),
		Summary:   r.str(SummaryKeys),
		Text:      r.str(TextKeys),
		Timestamp: r.timestamp(),
	}
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Timestamps must fall in years 1 through 9999, the range the snapshot
// encoders accept.
var (
	minUnix = float64(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	maxUnix = float64(time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).Unix())
)

// ParseTimestamp interprets v as epoch seconds, epoch milliseconds (values
// above 1e11) or a date string. It returns nil when v cannot be interpreted
// or lies outside years 1 through 9999.
func ParseTimestamp(v any) *time.Time {
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		if math.Abs(f) > millisThreshold {
			f /= 1000
		}
		if f < minUnix || f > maxUnix {
			return nil
		}
		sec, frac := math.Modf(f)
		t := time.Unix(int64(sec), int64(frac*1e9)).UTC()
		return &t
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return nil
	}
	t = t.UTC()
	if t.Year() < 1 || t.Year() > 9999 {
		return nil
	}
	return &t
}
