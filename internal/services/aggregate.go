/* Copyright (c) 2025 gitlab-project-dashboard authors
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"sort"
	"time"

	"github.com/alambare/gitlab-project-dashboard/internal/apperrors"
	"github.com/alambare/gitlab-project-dashboard/internal/domain"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// AggregateByDay folds every timelog of every issue into per-user calendar-day
// buckets (UTC). Within a bucket, issue entries keep encounter order: issue
// order first, then per-issue timelog order. Each user's buckets come out in
// ascending chronological order. An unparsable spentAt fails the whole
// aggregation.
func AggregateByDay(issues []domain.Issue) (domain.TimeData, error) {
	return aggregate(issues, dayLayout)
}

// AggregateByMonth is the month-keyed ("YYYY-MM") variant backing the monthly view.
func AggregateByMonth(issues []domain.Issue) (domain.TimeData, error) {
	return aggregate(issues, monthLayout)
}

func aggregate(issues []domain.Issue, layout string) (domain.TimeData, error) {
	type userAcc struct {
		order   []string
		buckets map[string]*domain.PeriodBucket
	}
	acc := map[string]*userAcc{}

	for _, issue := range issues {
		for _, tl := range issue.Timelogs {
			at, err := parseSpentAt(tl.SpentAt)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInvalidTimestamp, "spentAt "+tl.SpentAt)
			}
			key := at.UTC().Format(layout)

			ua := acc[tl.Username]
			if ua == nil {
				ua = &userAcc{buckets: map[string]*domain.PeriodBucket{}}
				acc[tl.Username] = ua
			}
			b := ua.buckets[key]
			if b == nil {
				b = &domain.PeriodBucket{Period: key}
				ua.buckets[key] = b
				ua.order = append(ua.order, key)
			}
			b.TotalSeconds += tl.TimeSpent
			b.Issues = append(b.Issues, domain.IssueTime{Title: issue.Title, TimeSpent: tl.TimeSpent})
		}
	}

	out := domain.TimeData{}
	for user, ua := range acc {
		keys := append([]string(nil), ua.order...)
		sort.Slice(keys, func(i, j int) bool {
			ti, _ := time.Parse(layout, keys[i])
			tj, _ := time.Parse(layout, keys[j])
			return ti.Before(tj)
		})
		buckets := make([]domain.PeriodBucket, 0, len(keys))
		for _, k := range keys {
			buckets = append(buckets, *ua.buckets[k])
		}
		out[user] = buckets
	}
	return out, nil
}

func parseSpentAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(dayLayout, s)
}
