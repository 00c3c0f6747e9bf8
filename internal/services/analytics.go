package services

import (
	"math"
	"sort"

	"github.com/clockpro/backend/internal/models"
)

// SubTypeSummary aggregates one (day, sub type) group.
type SubTypeSummary struct {
	Type              string   `json:"type"`
	Count             int      `json:"count"`
	TotalDuration     int      `json:"totalDuration"` // seconds
	CompletedSessions int      `json:"completedSessions"`
	AvgProductivity   *float64 `json:"avgProductivity,omitempty"` // nil when no rated session
}

type DailySummary struct {
	Date           string           `json:"date"` // YYYY-MM-DD, UTC
	Sessions       []SubTypeSummary `json:"sessions"`
	TotalSessions  int              `json:"totalSessions"`
	TotalFocusTime int              `json:"totalFocusTime"` // seconds
}

type AnalyticsSummary struct {
	TotalDays         int     `json:"totalDays"`
	TotalSessions     int     `json:"totalSessions"`
	TotalFocusTime    int     `json:"totalFocusTime"` // minutes
	AvgSessionsPerDay float64 `json:"avgSessionsPerDay"`
}

// Summarize groups sessions by (UTC calendar day, sub type) and rolls the
// groups up into per-day records plus a top-level summary. Pure function of
// its input; callers fetch and may cache.
func Summarize(sessions []models.Session) ([]DailySummary, AnalyticsSummary) {
	type groupKey struct {
		day     string
		subType string
	}
	type group struct {
		count     int
		duration  int
		completed int
		prodSum   int
		prodCount int
	}

	groups := make(map[groupKey]*group)
	for _, s := range sessions {
		k := groupKey{day: s.StartTime.UTC().Format("2006-01-02"), subType: s.SubType}
		g := groups[k]
		if g == nil {
			g = &group{}
			groups[k] = g
		}
		g.count++
		g.duration += s.ActualDuration
		if s.Completed {
			g.completed++
		}
		if s.Productivity != nil {
			g.prodSum += *s.Productivity
			g.prodCount++
		}
	}

	byDay := make(map[string]*DailySummary)
	for k, g := range groups {
		d := byDay[k.day]
		if d == nil {
			d = &DailySummary{Date: k.day}
			byDay[k.day] = d
		}
		entry := SubTypeSummary{
			Type:              k.subType,
			Count:             g.count,
			TotalDuration:     g.duration,
			CompletedSessions: g.completed,
		}
		if g.prodCount > 0 {
			avg := float64(g.prodSum) / float64(g.prodCount)
			entry.AvgProductivity = &avg
		}
		d.Sessions = append(d.Sessions, entry)
		d.TotalSessions += g.count
		d.TotalFocusTime += g.duration
	}

	days := make([]DailySummary, 0, len(byDay))
	for _, d := range byDay {
		sort.Slice(d.Sessions, func(i, j int) bool {
			return d.Sessions[i].Type < d.Sessions[j].Type
		})
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	var summary AnalyticsSummary
	summary.TotalDays = len(days)
	focusSeconds := 0
	for _, d := range days {
		summary.TotalSessions += d.TotalSessions
		focusSeconds += d.TotalFocusTime
	}
	summary.TotalFocusTime = focusSeconds / 60
	if len(days) > 0 {
		avg := float64(summary.TotalSessions) / float64(len(days))
		summary.AvgSessionsPerDay = math.Round(avg*10) / 10
	}
	return days, summary
}
