/* Copyright (c) 2025 gitlab-project-dashboard authors
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/alambare/gitlab-project-dashboard/internal/domain"
)

const totalSeriesColor = "#0000FF"

// ProjectChart turns aggregated time data into plotting-ready series: a
// "Total Time Spent" dataset followed by one dataset per user, values
// converted to the selected unit. The label axis is the deduplicated set of
// period keys across all users, sorted chronologically; sorting the final set
// keeps the total series' axis deterministic regardless of user iteration
// order. Period keys sort lexicographically and chronologically alike.
func ProjectChart(timeData domain.TimeData, unit string, hoursPerDay int) domain.ChartData {
	divisor := unitDivisor(unit, hoursPerDay)

	users := make([]string, 0, len(timeData))
	for user := range timeData {
		users = append(users, user)
	}
	sort.Strings(users)

	seen := map[string]bool{}
	labels := []string{}
	totals := map[string]float64{}
	datasets := make([]domain.Dataset, 0, len(users)+1)

	for _, user := range users {
		ds := domain.Dataset{Label: user, Data: []domain.Point{}, BorderColor: randomColor(), Fill: false}
		for _, bucket := range timeData[user] {
			if !seen[bucket.Period] {
				seen[bucket.Period] = true
				labels = append(labels, bucket.Period)
			}
			y := float64(bucket.TotalSeconds) / divisor
			ds.Data = append(ds.Data, domain.Point{X: bucket.Period, Y: y})
			totals[bucket.Period] += y
		}
		datasets = append(datasets, ds)
	}

	sort.Strings(labels)

	total := domain.Dataset{
		Label:           "Total Time Spent",
		Data:            make([]domain.Point, 0, len(labels)),
		BorderColor:     totalSeriesColor,
		BackgroundColor: "rgba(0,0,255,0.2)",
		BorderWidth:     2,
		Fill:            false,
	}
	for _, label := range labels {
		total.Data = append(total.Data, domain.Point{X: label, Y: totals[label]})
	}

	return domain.ChartData{Labels: labels, Datasets: append([]domain.Dataset{total}, datasets...)}
}

func unitDivisor(unit string, hoursPerDay int) float64 {
	if hoursPerDay <= 0 { hoursPerDay = 7 }
	if unit == domain.TimeUnitDays {
		return float64(hoursPerDay) * 3600
	}
	return 3600
}

// randomColor picks a display color for a user series. Purely cosmetic, no
// determinism contract.
func randomColor() string {
	return fmt.Sprintf("#%06X", rand.Intn(0x1000000))
}
