// ABOUTME: Demo data seeding for a fresh database
// ABOUTME: Inserts the sample contacts, deals, activities, campaigns and revenue with dates shifted relative to now
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/dealflow/models"
)

// ErrNotEmpty is returned when seeding a database that already has contacts.
var ErrNotEmpty = errors.New("database already has contacts")

// sampleEpoch is the latest timestamp in the sample set; seeding maps it onto now.
var sampleEpoch = time.Date(2023, 10, 20, 17, 0, 0, 0, time.UTC)

type sampleContact struct {
	name, email, phone, company, position string
	status                                models.ContactStatus
	lastContact, createdAt                string
	tags                                  []string
}

type sampleDeal struct {
	title       string
	value       int64
	stage       models.Stage
	contact     int
	createdAt   string
	closedAt    string
	description string
	probability int
}

type sampleActivity struct {
	typ                models.ActivityType
	title, description string
	date               string
	contact, deal      int
	completed          bool
	dueDate            string
}

type sampleCampaign struct {
	name                               string
	status                             models.CampaignStatus
	audience                           string
	sentCount                          int
	openRate, clickRate                float64
	createdAt, scheduledAt, completeAt string
}

var sampleContacts = []sampleContact{
	{"Sarah Johnson", "sarah.johnson@example.com", "+1 555-123-4567", "Acme Inc", "Marketing Director", models.StatusLead, "2023-10-15T14:30:00Z", "2023-10-01T10:00:00Z", []string{"marketing", "enterprise"}},
	{"Michael Chen", "michael.chen@example.com", "+1 555-987-6543", "TechCorp", "CTO", models.StatusProspect, "2023-10-18T09:15:00Z", "2023-09-28T14:20:00Z", []string{"tech", "decision-maker"}},
	{"Emma Williams", "emma.williams@example.com", "+1 555-456-7890", "Design Studio", "Creative Director", models.StatusCustomer, "2023-10-20T16:45:00Z", "2023-08-15T11:30:00Z", []string{"design", "repeat-customer"}},
	{"James Rodriguez", "james.rodriguez@example.com", "+1 555-234-5678", "Global Logistics", "Operations Manager", models.StatusLead, "2023-10-12T13:20:00Z", "2023-10-05T09:45:00Z", []string{"logistics", "potential"}},
	{"Sofia Nguyen", "sofia.nguyen@example.com", "+1 555-876-5432", "Health Innovations", "Product Manager", models.StatusProspect, "2023-10-19T10:30:00Z", "2023-09-22T15:10:00Z", []string{"healthcare", "product"}},
	{"David Kim", "david.kim@example.com", "+1 555-345-6789", "Financial Solutions", "Financial Advisor", models.StatusCustomer, "2023-10-17T11:00:00Z", "2023-07-10T13:15:00Z", []string{"finance", "vip"}},
	{"Olivia Martinez", "olivia.martinez@example.com", "+1 555-654-3210", "Education First", "Director of Sales", models.StatusLead, "2023-10-16T15:20:00Z", "2023-10-03T08:30:00Z", []string{"education", "sales"}},
	{"Daniel Lee", "daniel.lee@example.com", "+1 555-789-0123", "Green Energy", "Sustainability Officer", models.StatusProspect, "2023-10-13T09:00:00Z", "2023-09-18T16:45:00Z", []string{"energy", "sustainability"}},
}

var sampleDeals = []sampleDeal{
	{"Enterprise Marketing Solution", 15000, models.StageProposal, 0, "2023-10-05T09:15:00Z", "", "Comprehensive marketing platform for enterprise needs", 60},
	{"TechCorp Infrastructure Upgrade", 45000, models.StageNegotiation, 1, "2023-09-30T14:20:00Z", "", "Complete overhaul of server infrastructure", 75},
	{"Design Services Renewal", 12000, models.StageClosed, 2, "2023-10-10T11:05:00Z", "2023-10-15T16:30:00Z", "Annual renewal of design services package", 100},
	{"Logistics Software Implementation", 28000, models.StageContact, 3, "2023-10-12T10:20:00Z", "", "Installation and setup of logistics management software", 40},
	{"Healthcare Product Integration", 35000, models.StageProposal, 4, "2023-10-08T13:45:00Z", "", "Integration of our product with existing healthcare systems", 55},
	{"Financial Services Package", 20000, models.StageClosed, 5, "2023-09-20T09:30:00Z", "2023-10-10T15:15:00Z", "Premium financial services package for high-value clients", 100},
	{"Education Platform Subscription", 18000, models.StageLead, 6, "2023-10-15T08:10:00Z", "", "Annual subscription to education management platform", 25},
	{"Sustainability Consultation", 22000, models.StageContact, 7, "2023-10-13T11:20:00Z", "", "Comprehensive sustainability consultation and reporting", 35},
}

var sampleActivities = []sampleActivity{
	{models.ActivityCall, "Initial discovery call", "Discussed potential marketing needs and solutions", "2023-10-15T14:30:00Z", 0, 0, true, ""},
	{models.ActivityEmail, "Sent proposal", "Emailed detailed proposal with pricing options", "2023-10-16T09:15:00Z", 0, 0, true, ""},
	{models.ActivityMeeting, "Technical review", "Meeting with technical team to discuss infrastructure requirements", "2023-10-18T13:00:00Z", 1, 1, true, ""},
	{models.ActivityNote, "Contract notes", "Client requested revisions to service level agreement", "2023-10-19T10:45:00Z", 1, 1, true, ""},
	{models.ActivityTask, "Follow up on proposal", "Schedule call to discuss proposal details", "2023-10-20T00:00:00Z", 4, 4, false, "2023-10-23T17:00:00Z"},
	{models.ActivityEmail, "Thank you email", "Sent thank you email with next steps", "2023-10-15T15:30:00Z", 2, 2, true, ""},
	{models.ActivityTask, "Prepare demo", "Prepare customized demo for logistics software", "2023-10-14T09:00:00Z", 3, 3, true, "2023-10-16T17:00:00Z"},
	{models.ActivityCall, "Discovery call", "Initial call to understand educational requirements", "2023-10-16T11:30:00Z", 6, 6, true, ""},
}

var sampleCampaigns = []sampleCampaign{
	{"Q4 Newsletter", models.CampaignCompleted, "All Customers", 1250, 28.4, 12.3, "2023-09-25T09:00:00Z", "2023-10-01T08:00:00Z", "2023-10-01T08:30:00Z"},
	{"Product Launch Announcement", models.CampaignActive, "Prospects and Customers", 2150, 31.5, 18.7, "2023-10-10T14:00:00Z", "2023-10-15T09:00:00Z", ""},
	{"Holiday Promotion", models.CampaignScheduled, "All Contacts", 0, 0, 0, "2023-10-18T11:30:00Z", "2023-11-20T08:00:00Z", ""},
	{"Customer Satisfaction Survey", models.CampaignDraft, "Active Customers", 0, 0, 0, "2023-10-19T15:45:00Z", "", ""},
}

var sampleRevenue = [12]int64{42000, 38000, 45000, 56000, 61000, 58000, 63000, 55000, 67000, 72000, 0, 0}

// SeedSampleData loads the demo data set into an empty database. Every sample
// timestamp is shifted so the newest one lands on now.
func SeedSampleData(db *sql.DB, now time.Time) error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return fmt.Errorf("failed to count contacts: %w", err)
	}
	if n > 0 {
		return ErrNotEmpty
	}

	offset := now.UTC().Sub(sampleEpoch)
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t.Add(offset)
	}
	atPtr := func(s string) *time.Time {
		if s == "" {
			return nil
		}
		t := at(s)
		return &t
	}

	contactIDs := make([]string, len(sampleContacts))
	for i, sc := range sampleContacts {
		c := &models.Contact{
			Name:        sc.name,
			Email:       sc.email,
			Phone:       sc.phone,
			Company:     sc.company,
			Position:    sc.position,
			Status:      sc.status,
			Tags:        sc.tags,
			LastContact: atPtr(sc.lastContact),
			CreatedAt:   at(sc.createdAt),
		}
		if err := CreateContact(db, c); err != nil {
			return err
		}
		contactIDs[i] = c.ID
	}

	dealIDs := make([]string, len(sampleDeals))
	for i, sd := range sampleDeals {
		prob := sd.probability
		d := &models.Deal{
			Title:       sd.title,
			Value:       sd.value,
			Stage:       sd.stage,
			ContactID:   contactIDs[sd.contact],
			CreatedAt:   at(sd.createdAt),
			ClosedAt:    atPtr(sd.closedAt),
			Description: sd.description,
			Probability: &prob,
		}
		if err := CreateDeal(db, d); err != nil {
			return err
		}
		dealIDs[i] = d.ID
	}

	for _, sa := range sampleActivities {
		a := &models.Activity{
			Type:        sa.typ,
			Title:       sa.title,
			Description: sa.description,
			Date:        at(sa.date),
			ContactID:   contactIDs[sa.contact],
			DealID:      dealIDs[sa.deal],
			Completed:   sa.completed,
			DueDate:     atPtr(sa.dueDate),
		}
		if err := LogActivity(db, a); err != nil {
			return err
		}
	}

	for _, sc := range sampleCampaigns {
		c := &models.Campaign{
			Name:        sc.name,
			Status:      sc.status,
			Type:        "email",
			Audience:    sc.audience,
			SentCount:   sc.sentCount,
			CreatedAt:   at(sc.createdAt),
			ScheduledAt: atPtr(sc.scheduledAt),
			CompletedAt: atPtr(sc.completeAt),
		}
		if sc.sentCount > 0 {
			open, click := sc.openRate, sc.clickRate
			c.OpenRate = &open
			c.ClickRate = &click
		}
		if err := CreateCampaign(db, c); err != nil {
			return err
		}
	}

	for i, amount := range sampleRevenue {
		if err := SetRevenue(db, models.Months[i], amount); err != nil {
			return err
		}
	}

	return nil
}
