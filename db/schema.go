// ABOUTME: Database schema definitions
// ABOUTME: Creates contacts, deals, activities, campaigns, revenue and sync_state tables
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	company TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'lead' CHECK(status IN ('lead', 'prospect', 'customer', 'churned')),
	tags TEXT NOT NULL DEFAULT '[]',
	last_contact DATETIME,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts(status);

CREATE TABLE IF NOT EXISTS deals (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	value INTEGER NOT NULL DEFAULT 0 CHECK(value >= 0),
	stage TEXT NOT NULL CHECK(stage IN ('lead', 'contact', 'proposal', 'negotiation', 'closed')),
	contact_id TEXT,
	probability INTEGER CHECK(probability BETWEEN 0 AND 100),
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	closed_at DATETIME,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_stage ON deals(stage);
CREATE INDEX IF NOT EXISTS idx_deals_contact_id ON deals(contact_id);

CREATE TABLE IF NOT EXISTS activities (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK(type IN ('email', 'call', 'meeting', 'task', 'note')),
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date DATETIME NOT NULL,
	contact_id TEXT,
	deal_id TEXT,
	completed INTEGER NOT NULL DEFAULT 0,
	due_date DATETIME,
	FOREIGN KEY (contact_id) REFERENCES contacts(id) ON DELETE SET NULL,
	FOREIGN KEY (deal_id) REFERENCES deals(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date DESC);
CREATE INDEX IF NOT EXISTS idx_activities_contact_id ON activities(contact_id);

CREATE TABLE IF NOT EXISTS campaigns (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('draft', 'scheduled', 'active', 'completed')),
	type TEXT NOT NULL DEFAULT 'email',
	audience TEXT NOT NULL DEFAULT '',
	sent_count INTEGER NOT NULL DEFAULT 0,
	open_rate REAL,
	click_rate REAL,
	created_at DATETIME NOT NULL,
	scheduled_at DATETIME,
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS revenue (
	seq INTEGER PRIMARY KEY,
	period TEXT NOT NULL UNIQUE,
	amount INTEGER NOT NULL DEFAULT 0 CHECK(amount >= 0)
);

CREATE TABLE IF NOT EXISTS sync_state (
	service TEXT PRIMARY KEY,
	last_sync_time DATETIME,
	record_count INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('idle', 'syncing', 'error')),
	error_message TEXT,
	updated_at DATETIME NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
