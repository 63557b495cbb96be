// ABOUTME: Data models for CRM pipeline entities
// ABOUTME: Defines Contact, Deal, Activity, Campaign, RevenuePoint and the Snapshot that carries them
package models

import (
	"strings"
	"time"
)

type Contact struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	Company     string        `json:"company,omitempty"`
	Position    string        `json:"position,omitempty"`
	Status      ContactStatus `json:"status"`
	Tags        []string      `json:"tags,omitempty"`
	LastContact *time.Time    `json:"last_contact,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type Deal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Value       int64      `json:"value"` // whole currency units
	Stage       Stage      `json:"stage"`
	ContactID   string     `json:"contact_id,omitempty"`
	Contact     *Contact   `json:"contact,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Probability *int       `json:"probability,omitempty"`
	Description string     `json:"description,omitempty"`
}

type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Date        time.Time    `json:"date"`
	ContactID   string       `json:"contact_id,omitempty"`
	DealID      string       `json:"deal_id,omitempty"`
	Completed   bool         `json:"completed,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
}

type Campaign struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      CampaignStatus `json:"status"`
	Type        string         `json:"type"`
	Audience    string         `json:"audience,omitempty"`
	SentCount   int            `json:"sent_count,omitempty"`
	OpenRate    *float64       `json:"open_rate,omitempty"`
	ClickRate   *float64       `json:"click_rate,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// RevenuePoint is one period of a historical revenue series.
// A zero Amount means the period has no data yet.
type RevenuePoint struct {
	Period string `json:"period"`
	Amount int64  `json:"amount"`
}

// Snapshot is a read-only copy of every record collection at one point in time.
type Snapshot struct {
	Contacts   []Contact      `json:"contacts"`
	Deals      []Deal         `json:"deals"`
	Activities []Activity     `json:"activities"`
	Campaigns  []Campaign     `json:"campaigns"`
	Revenue    []RevenuePoint `json:"revenue"`
}

// Months is the cyclical period label set used by revenue series.
var Months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// MonthIndex returns the position of label in Months, or -1.
func MonthIndex(label string) int {
	for i, m := range Months {
		if strings.EqualFold(m, label) {
			return i
		}
	}
	return -1
}

// NormalizeTags trims, drops empties and removes duplicate tags, keeping first occurrence order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// Clone returns a deep copy of the contact so derived views never alias input slices.
func (c Contact) Clone() Contact {
	out := c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.LastContact != nil {
		t := *c.LastContact
		out.LastContact = &t
	}
	return out
}

// Clone returns a deep copy of the deal, including any embedded contact.
func (d Deal) Clone() Deal {
	out := d
	if d.Contact != nil {
		c := d.Contact.Clone()
		out.Contact = &c
	}
	if d.ClosedAt != nil {
		t := *d.ClosedAt
		out.ClosedAt = &t
	}
	if d.Probability != nil {
		p := *d.Probability
		out.Probability = &p
	}
	return out
}
