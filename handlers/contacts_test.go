// ABOUTME: Tests for contact and activity MCP tool handlers
// ABOUTME: Validates tool input/output, defaults and error handling
package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/pipeline"
)

func TestAddContactHandler(t *testing.T) {
	database := setupTestDB(t)
	handler := NewContactHandlers(database, pipeline.FixedClock(testNow))

	_, out, err := handler.AddContact(t.Context(), nil, AddContactInput{
		Name:    "John Doe",
		Email:   "john@example.com",
		Company: "Acme Corp",
		Tags:    []string{"vip", "vip", " enterprise "},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "John Doe", out.Name)
	assert.Equal(t, "lead", out.Status)
	assert.Equal(t, []string{"vip", "enterprise"}, out.Tags)
	assert.Equal(t, "2024-10-15T12:00:00Z", out.CreatedAt)

	stored, err := db.GetContact(database, out.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Acme Corp", stored.Company)
}

func TestAddContactValidation(t *testing.T) {
	handler := NewContactHandlers(setupTestDB(t), nil)

	_, _, err := handler.AddContact(t.Context(), nil, AddContactInput{})
	assert.Error(t, err)

	_, _, err = handler.AddContact(t.Context(), nil, AddContactInput{Name: "Jane", Status: "vip"})
	assert.Error(t, err)
}

func TestAddContactRejectsDuplicateEmail(t *testing.T) {
	handler := NewContactHandlers(setupTestDB(t), nil)

	_, _, err := handler.AddContact(t.Context(), nil, AddContactInput{Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)

	_, _, err = handler.AddContact(t.Context(), nil, AddContactInput{Name: "Jane Doe", Email: "JANE@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestFindContactsHandler(t *testing.T) {
	database := setupTestDB(t)
	handler := NewContactHandlers(database, nil)

	for _, in := range []AddContactInput{
		{Name: "Jane Smith", Company: "Acme", Status: "customer"},
		{Name: "John Smith", Company: "Globex"},
		{Name: "Bob Jones", Company: "Acme"},
	} {
		_, _, err := handler.AddContact(t.Context(), nil, in)
		require.NoError(t, err)
	}

	_, out, err := handler.FindContacts(t.Context(), nil, FindContactsInput{Query: "Smith"})
	require.NoError(t, err)
	assert.Len(t, out.Contacts, 2)

	_, out, err = handler.FindContacts(t.Context(), nil, FindContactsInput{Query: "Acme", Status: "customer"})
	require.NoError(t, err)
	require.Len(t, out.Contacts, 1)
	assert.Equal(t, "Jane Smith", out.Contacts[0].Name)

	_, _, err = handler.FindContacts(t.Context(), nil, FindContactsInput{Status: "gone"})
	assert.Error(t, err)
}

func TestLogActivityHandler(t *testing.T) {
	database := setupTestDB(t)
	contacts := NewContactHandlers(database, pipeline.FixedClock(testNow))

	_, contact, err := contacts.AddContact(t.Context(), nil, AddContactInput{Name: "John Doe"})
	require.NoError(t, err)

	_, out, err := contacts.LogActivity(t.Context(), nil, LogActivityInput{
		Type:      "call",
		Title:     "Discovery call",
		ContactID: contact.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "call", out.Type)
	assert.Equal(t, "2024-10-15T12:00:00Z", out.Date)

	stored, err := db.GetContact(database, contact.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastContact)
	assert.True(t, stored.LastContact.Equal(testNow))
}

func TestLogActivityTaskWithDueDate(t *testing.T) {
	database := setupTestDB(t)
	contacts := NewContactHandlers(database, pipeline.FixedClock(testNow))

	_, contact, err := contacts.AddContact(t.Context(), nil, AddContactInput{Name: "John Doe"})
	require.NoError(t, err)

	_, out, err := contacts.LogActivity(t.Context(), nil, LogActivityInput{
		Type:      "task",
		Title:     "Send contract",
		ContactID: contact.ID,
		DueDate:   "2024-10-20T09:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-10-20T09:00:00Z", out.DueDate)
	assert.False(t, out.Completed)

	// tasks are not contact touches
	stored, err := db.GetContact(database, contact.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastContact)
}

func TestLogActivityValidation(t *testing.T) {
	handler := NewContactHandlers(setupTestDB(t), nil)

	tests := []struct {
		name  string
		input LogActivityInput
	}{
		{"missing type", LogActivityInput{Title: "x"}},
		{"missing title", LogActivityInput{Type: "call"}},
		{"unknown type", LogActivityInput{Type: "sms", Title: "x"}},
		{"unknown contact", LogActivityInput{Type: "call", Title: "x", ContactID: "nope"}},
		{"unknown deal", LogActivityInput{Type: "call", Title: "x", DealID: "nope"}},
		{"bad date", LogActivityInput{Type: "call", Title: "x", Date: "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := handler.LogActivity(t.Context(), nil, tt.input)
			assert.Error(t, err)
		})
	}
}
