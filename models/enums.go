// ABOUTME: Closed enumerations for pipeline stages, contact statuses and activity types
// ABOUTME: Provides the fixed StageOrder plus parsing and validation helpers
package models

import (
	"fmt"
	"strings"
)

// Stage is a pipeline phase. The set is closed; see Stages for the order.
type Stage string

const (
	StageLead        Stage = "lead"
	StageContact     Stage = "contact"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageClosed      Stage = "closed"
)

// Stages returns the fixed pipeline order. Every call returns a fresh slice.
func Stages() []Stage {
	return []Stage{StageLead, StageContact, StageProposal, StageNegotiation, StageClosed}
}

// Index returns the position of s in the pipeline order, or -1 for an unknown stage.
func (s Stage) Index() int {
	switch s {
	case StageLead:
		return 0
	case StageContact:
		return 1
	case StageProposal:
		return 2
	case StageNegotiation:
		return 3
	case StageClosed:
		return 4
	default:
		return -1
	}
}

func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Label is the display name used on boards and charts.
func (s Stage) Label() string {
	switch s {
	case StageLead:
		return "Leads"
	case StageContact:
		return "Contacted"
	case StageProposal:
		return "Proposal"
	case StageNegotiation:
		return "Negotiation"
	case StageClosed:
		return "Closed Won"
	default:
		return string(s)
	}
}

// Next returns the following stage, or false at the end of the pipeline.
func (s Stage) Next() (Stage, bool) {
	stages := Stages()
	i := s.Index()
	if i < 0 || i+1 >= len(stages) {
		return s, false
	}
	return stages[i+1], true
}

// Prev returns the preceding stage, or false at the start of the pipeline.
func (s Stage) Prev() (Stage, bool) {
	stages := Stages()
	i := s.Index()
	if i <= 0 {
		return s, false
	}
	return stages[i-1], true
}

// ParseStage converts user input into a Stage.
func ParseStage(value string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid stage: %s (valid: lead, contact, proposal, negotiation, closed)", value)
	}
	return s, nil
}

type ContactStatus string

const (
	StatusLead     ContactStatus = "lead"
	StatusProspect ContactStatus = "prospect"
	StatusCustomer ContactStatus = "customer"
	StatusChurned  ContactStatus = "churned"
)

// ContactStatuses returns every contact status in display order.
func ContactStatuses() []ContactStatus {
	return []ContactStatus{StatusLead, StatusProspect, StatusCustomer, StatusChurned}
}

func (s ContactStatus) Valid() bool {
	switch s {
	case StatusLead, StatusProspect, StatusCustomer, StatusChurned:
		return true
	default:
		return false
	}
}

// Label capitalises the status for chart legends.
func (s ContactStatus) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func ParseContactStatus(value string) (ContactStatus, error) {
	s := ContactStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid status: %s (valid: lead, prospect, customer, churned)", value)
	}
	return s, nil
}

type ActivityType string

const (
	ActivityEmail   ActivityType = "email"
	ActivityCall    ActivityType = "call"
	ActivityMeeting ActivityType = "meeting"
	ActivityTask    ActivityType = "task"
	ActivityNote    ActivityType = "note"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityEmail, ActivityCall, ActivityMeeting, ActivityTask, ActivityNote:
		return true
	default:
		return false
	}
}

func ParseActivityType(value string) (ActivityType, error) {
	t := ActivityType(strings.ToLower(strings.TrimSpace(value)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid activity type: %s (valid: email, call, meeting, task, note)", value)
	}
	return t, nil
}

type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
)

func CampaignStatuses() []CampaignStatus {
	return []CampaignStatus{CampaignDraft, CampaignScheduled, CampaignActive, CampaignCompleted}
}

func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignActive, CampaignCompleted:
		return true
	default:
		return false
	}
}

func ParseCampaignStatus(value string) (CampaignStatus, error) {
	s := CampaignStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid campaign status: %s (valid: draft, scheduled, active, completed)", value)
	}
	return s, nil
}
