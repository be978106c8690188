package safeharbor

import (
	"sort"

	"github.com/warp/safe-harbor-engine/generic"
)

// AlertSeverity grades how close a project deadline is.
type AlertSeverity string

const (
	SeverityOverdue  AlertSeverity = "overdue"
	SeverityDueSoon  AlertSeverity = "due_soon"
	SeverityUpcoming AlertSeverity = "upcoming"
)

// DueSoonDays is the window in which an upcoming deadline is due_soon.
const DueSoonDays = 30

// Alert is a project deadline falling inside a reporting window.
type Alert struct {
	ProjectID     ProjectID
	ProjectName   string
	Deadline      string
	Date          generic.TimePoint
	DaysRemaining int
	Severity      AlertSeverity
}

// ProjectDeadlines lists the dated obligations of p: the 105-day delivery
// deadline, the July 4, 2026 physical work deadline for Group 2, and the
// placed-in-service date from the group guidance.
func ProjectDeadlines(p Project) []Deadline {
	if p.PaymentDate.IsZero() {
		return nil
	}

	deadlines := []Deadline{{
		Name:        "105-Day Delivery Deadline",
		Description: "Equipment must be delivered for economic performance at payment",
		Date:        DeliveryDeadline(p.PaymentDate),
	}}

	if p.Group == Group2 {
		deadlines = append(deadlines, Deadline{
			Name:        "Physical Work Deadline",
			Description: "Physical work of a significant nature must be complete for ITC/PTC BOC",
			Date:        ITCSmallProjectDeadline,
		})
	}

	if pis := GuidanceFor(p.Group).PlacedInServiceBy; pis != "" {
		if date, err := generic.ParseDate(pis); err == nil {
			deadlines = append(deadlines, Deadline{
				Name:        "Placed-in-Service Deadline",
				Description: "Continuity safe harbor expires for " + p.Group.String(),
				Date:        date,
			})
		}
	}
	return deadlines
}

// UpcomingDeadlines returns the deadlines of projects that fall within
// window days of today, in either direction, ordered by date.
func UpcomingDeadlines(projects []Project, today generic.TimePoint, window int) []Alert {
	var alerts []Alert
	for _, p := range projects {
		for _, d := range ProjectDeadlines(p) {
			days := generic.DaysBetween(today, d.Date)
			if days > window || days < -window {
				continue
			}
			alerts = append(alerts, Alert{
				ProjectID:     p.ID,
				ProjectName:   p.Name,
				Deadline:      d.Name,
				Date:          d.Date,
				DaysRemaining: days,
				Severity:      severityFor(days),
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if !alerts[i].Date.Equal(alerts[j].Date) {
			return alerts[i].Date.Before(alerts[j].Date)
		}
		return alerts[i].ProjectID < alerts[j].ProjectID
	})
	return alerts
}

func severityFor(days int) AlertSeverity {
	switch {
	case days < 0:
		return SeverityOverdue
	case days <= DueSoonDays:
		return SeverityDueSoon
	default:
		return SeverityUpcoming
	}
}
