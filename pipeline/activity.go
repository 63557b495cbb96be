// ABOUTME: Activity feed, overdue task and contact engagement derivations
// ABOUTME: All recency calculations take an explicit now instant
package pipeline

import (
	"sort"
	"time"

	"github.com/harperreed/dealflow/models"
)

// DefaultFeedLimit is the size of the dashboard activity feed.
const DefaultFeedLimit = 5

// RecentActivities returns up to limit activities, newest first. Ties keep input order.
func RecentActivities(activities []models.Activity, limit int) []models.Activity {
	out := make([]models.Activity, len(activities))
	copy(out, activities)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// OverdueTasks returns incomplete tasks whose due date is before now, most overdue first.
func OverdueTasks(activities []models.Activity, now time.Time) []models.Activity {
	var out []models.Activity
	for _, a := range activities {
		if a.Type != models.ActivityTask || a.Completed || a.DueDate == nil {
			continue
		}
		if a.DueDate.Before(now) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(*out[j].DueDate)
	})
	return out
}

// ActivitiesForContact filters activities linked to contactID.
func ActivitiesForContact(activities []models.Activity, contactID string) []models.Activity {
	var out []models.Activity
	for _, a := range activities {
		if contactID != "" && a.ContactID == contactID {
			out = append(out, a)
		}
	}
	return out
}

// DaysSinceContact returns whole days since the last contact. ok is false when the
// contact has never been contacted.
func DaysSinceContact(c models.Contact, now time.Time) (days int, ok bool) {
	if c.LastContact == nil {
		return 0, false
	}
	d := now.Sub(*c.LastContact)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour)), true
}

// EngagementScore scores a contact 0-100 from activity volume and contact recency.
func EngagementScore(c models.Contact, activityCount int, now time.Time) int {
	score := min(max(activityCount, 0)*10, 50)

	if days, ok := DaysSinceContact(c, now); ok {
		switch {
		case days < 7:
			score += 50
		case days < 30:
			score += 30
		case days < 90:
			score += 10
		}
	}

	return min(score, 100)
}
