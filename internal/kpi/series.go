// Package kpi computes expected-versus-actual tracking series for a
// contract. Like the decision engine it is pure: callers load the samples,
// this package only does the math.
package kpi

import (
	"math"
	"sort"
	"time"

	"github.com/lcharvet/sav-coverage/internal/model"
)

type AlertLevel string

const (
	LevelGreen  AlertLevel = "GREEN"
	LevelOrange AlertLevel = "ORANGE"
	LevelRed    AlertLevel = "RED"
)

// Sample is one daily count, either planned or observed.
type Sample struct {
	Date  time.Time
	Value int
}

// Point is one day of the merged series. Days present on only one side get
// a zero on the other.
type Point struct {
	Date               time.Time  `json:"date"`
	Expected           int        `json:"expected"`
	Actual             int        `json:"actual"`
	ExpectedCumulative int        `json:"expected_cumulative"`
	ActualCumulative   int        `json:"actual_cumulative"`
	DeltaPercent       float64    `json:"delta_percent"`
	AlertLevel         AlertLevel `json:"alert_level"`
	Spike              bool       `json:"spike"`
}

// TypeSeries pairs a KPI type with its daily series.
type TypeSeries struct {
	Type   model.KPIType `json:"kpi_type"`
	Series []Point       `json:"series"`
}

// Alert is a non-green or spiking day worth surfacing.
type Alert struct {
	Type         model.KPIType `json:"kpi_type"`
	Date         time.Time     `json:"date"`
	AlertLevel   AlertLevel    `json:"alert_level"`
	DeltaPercent float64       `json:"delta_percent"`
	Spike        bool          `json:"spike"`
}

// BuildSeries merges expected and actual samples into one chronological
// series with cumulative sums and per-day deviation. A day with no expected
// value deviates 0% when nothing happened and 100% otherwise. Deviation
// within 5% is green, within 10% orange, beyond that red; a spike is an
// actual above one and a half times the expectation.
func BuildSeries(expected, actual []Sample) []Point {
	expectedByDay := indexSamples(expected)
	actualByDay := indexSamples(actual)

	days := make([]time.Time, 0, len(expectedByDay)+len(actualByDay))
	seen := make(map[time.Time]struct{})
	for day := range expectedByDay {
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	for day := range actualByDay {
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	series := make([]Point, 0, len(days))
	expectedCumulative := 0
	actualCumulative := 0

	for _, day := range days {
		expectedValue := expectedByDay[day]
		actualValue := actualByDay[day]
		expectedCumulative += expectedValue
		actualCumulative += actualValue

		var deltaPercent float64
		if expectedValue == 0 {
			if actualValue != 0 {
				deltaPercent = 100.0
			}
		} else {
			deltaPercent = float64(actualValue-expectedValue) / float64(expectedValue) * 100
		}
		deltaPercent = math.Round(deltaPercent*100) / 100

		level := LevelRed
		switch {
		case math.Abs(deltaPercent) <= 5:
			level = LevelGreen
		case math.Abs(deltaPercent) <= 10:
			level = LevelOrange
		}

		spike := expectedValue > 0 && float64(actualValue) > float64(expectedValue)*1.5

		series = append(series, Point{
			Date:               day,
			Expected:           expectedValue,
			Actual:             actualValue,
			ExpectedCumulative: expectedCumulative,
			ActualCumulative:   actualCumulative,
			DeltaPercent:       deltaPercent,
			AlertLevel:         level,
			Spike:              spike,
		})
	}

	return series
}

// Alerts filters a series down to the days that need attention.
func Alerts(kpiType model.KPIType, series []Point) []Alert {
	var alerts []Alert
	for _, point := range series {
		if point.AlertLevel == LevelGreen && !point.Spike {
			continue
		}
		alerts = append(alerts, Alert{
			Type:         kpiType,
			Date:         point.Date,
			AlertLevel:   point.AlertLevel,
			DeltaPercent: point.DeltaPercent,
			Spike:        point.Spike,
		})
	}
	return alerts
}

func indexSamples(samples []Sample) map[time.Time]int {
	byDay := make(map[time.Time]int, len(samples))
	for _, sample := range samples {
		y, m, d := sample.Date.Date()
		byDay[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)] = sample.Value
	}
	return byDay
}
