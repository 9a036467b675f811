// Meridian - SaaS Administration Console KPI Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/meridian

package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/meridian/internal/models"
)

// Period is the width of a time bucket.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// Reduction selects how the samples of one bucket are combined.
type Reduction int

const (
	// ReduceSum adds the sample values of a bucket.
	ReduceSum Reduction = iota
	// ReduceCount counts the samples of a bucket.
	ReduceCount
	// ReduceMean averages the sample values of a bucket.
	ReduceMean
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// dateLayouts are tried in order when parsing a record date.
var dateLayouts = []string{
	dayLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParsePeriod converts a period name to a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodDaily:
		return PeriodDaily, nil
	case PeriodWeekly:
		return PeriodWeekly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// ParseDate parses a record date. It reports false for anything that is not a
// calendar date or timestamp in one of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// BucketKey returns the bucket a date falls into.
// Unknown periods fall back to daily keys.
func BucketKey(t time.Time, period Period) string {
	switch period {
	case PeriodWeekly:
		return t.AddDate(0, 0, -int(t.Weekday())).Format(dayLayout)
	case PeriodMonthly:
		return t.Format(monthLayout)
	default:
		return t.Format(dayLayout)
	}
}

// BucketByPeriod groups samples into period buckets and reduces each bucket.
//
// Samples with an unparseable date or a non-finite value are excluded. The
// result is sorted by bucket key ascending; the key formats (YYYY-MM-DD and
// YYYY-MM) sort chronologically as strings. Empty input yields an empty slice.
func BucketByPeriod(samples []models.MetricSample, period Period, reduce Reduction) []models.ChartPoint {
	type bucket struct {
		total float64
		count int
	}

	buckets := make(map[string]*bucket)
	for _, s := range samples {
		if !isFinite(s.Value) {
			continue
		}
		t, ok := ParseDate(s.Date)
		if !ok {
			continue
		}
		key := BucketKey(t, period)
		b, exists := buckets[key]
		if !exists {
			b = &bucket{}
			buckets[key] = b
		}
		b.total += s.Value
		b.count++
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	points := make([]models.ChartPoint, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		var value float64
		switch reduce {
		case ReduceCount:
			value = float64(b.count)
		case ReduceMean:
			value = b.total / float64(b.count)
		default:
			value = b.total
		}
		points = append(points, models.ChartPoint{Date: key, Value: finiteOrZero(value)})
	}
	return points
}

// RevenueSamples converts revenue records to samples valued by amount and
// categorised by source.
func RevenueSamples(records []models.RevenueRecord) []models.MetricSample {
	samples := make([]models.MetricSample, len(records))
	for i, r := range records {
		samples[i] = models.MetricSample{Date: r.Date, Value: r.Amount, Category: string(r.Source)}
	}
	return samples
}

// AcquisitionSamples converts acquisition records to samples valued by NewUsers.
// Summing these samples is the count-based reduction used for acquisition charts.
func AcquisitionSamples(records []models.AcquisitionRecord) []models.MetricSample {
	samples := make([]models.MetricSample, len(records))
	for i, r := range records {
		samples[i] = models.MetricSample{Date: r.Date, Value: float64(r.NewUsers), Category: string(r.Source)}
	}
	return samples
}

// EngagementSamples converts engagement records to samples valued by session
// duration and categorised by user.
func EngagementSamples(records []models.EngagementRecord) []models.MetricSample {
	samples := make([]models.MetricSample, len(records))
	for i, r := range records {
		samples[i] = models.MetricSample{Date: r.Date, Value: r.AverageSessionDuration, Category: r.UserID}
	}
	return samples
}

// ActiveUserSamples returns one sample per user and bucket of the given period,
// so that counting the samples of a bucket yields its distinct active users.
// Records without a user or with an unusable date or duration are left out.
// The first record of each user in a bucket is kept.
func ActiveUserSamples(records []models.EngagementRecord, period Period) []models.MetricSample {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.MetricSample, 0, len(records))
	for _, s := range EngagementSamples(records) {
		if s.Category == "" || s.Value < 0 || !usableSample(s) {
			continue
		}
		t, _ := ParseDate(s.Date)
		key := BucketKey(t, period) + "\x00" + s.Category
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// usableSample reports whether a sample survives bucketing.
func usableSample(s models.MetricSample) bool {
	if !isFinite(s.Value) {
		return false
	}
	_, ok := ParseDate(s.Date)
	return ok
}
