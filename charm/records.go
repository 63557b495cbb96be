// ABOUTME: JSON record layout for the hosted pipeline data in Charm KV
// ABOUTME: Publishes a full snapshot, reads it back in a deterministic order and moves deals in place

package charm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
)

const (
	ContactPrefix  = "contact:"
	DealPrefix     = "deal:"
	ActivityPrefix = "activity:"
	CampaignPrefix = "campaign:"
	RevenuePrefix  = "revenue:"
)

var recordPrefixes = []string{ContactPrefix, DealPrefix, ActivityPrefix, CampaignPrefix, RevenuePrefix}

func revenueKey(seq int) []byte {
	return []byte(fmt.Sprintf("%s%04d", RevenuePrefix, seq))
}

// Publish replaces every pipeline record in the store with snap and returns the number
// of records written. Auto-sync, when enabled, runs once at the end.
func (c *Client) Publish(ctx context.Context, snap *models.Snapshot) (int, error) {
	if snap == nil {
		snap = &models.Snapshot{}
	}

	type record struct {
		key   []byte
		value any
	}
	var records []record
	for _, v := range snap.Contacts {
		records = append(records, record{[]byte(ContactPrefix + v.ID), v})
	}
	for _, v := range snap.Deals {
		// the embedded contact is stored under its own key
		v.Contact = nil
		records = append(records, record{[]byte(DealPrefix + v.ID), v})
	}
	for _, v := range snap.Activities {
		records = append(records, record{[]byte(ActivityPrefix + v.ID), v})
	}
	for _, v := range snap.Campaigns {
		records = append(records, record{[]byte(CampaignPrefix + v.ID), v})
	}
	for i, v := range snap.Revenue {
		records = append(records, record{revenueKey(i), v})
	}

	err := c.batch(func(s kvStore) error {
		keys, err := s.Keys()
		if err != nil {
			return fmt.Errorf("failed to list keys: %w", err)
		}
		for _, k := range keys {
			if !isRecordKey(k) {
				continue
			}
			if err := s.Delete(k); err != nil {
				return fmt.Errorf("failed to delete %s: %w", k, err)
			}
		}

		for _, r := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := json.Marshal(r.value)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", r.key, err)
			}
			if err := s.Set(r.key, data); err != nil {
				return fmt.Errorf("failed to write %s: %w", r.key, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Snapshot reads every record. Contacts are oldest first, deals, activities and
// campaigns newest first, revenue in stored sequence.
func (c *Client) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	keys, err := c.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var snap models.Snapshot
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isRecordKey(k) {
			continue
		}

		data, err := c.Get(k)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k, err)
		}

		key := string(k)
		switch {
		case strings.HasPrefix(key, ContactPrefix):
			err = appendDecoded(data, &snap.Contacts)
		case strings.HasPrefix(key, DealPrefix):
			err = appendDecoded(data, &snap.Deals)
		case strings.HasPrefix(key, ActivityPrefix):
			err = appendDecoded(data, &snap.Activities)
		case strings.HasPrefix(key, CampaignPrefix):
			err = appendDecoded(data, &snap.Campaigns)
		case strings.HasPrefix(key, RevenuePrefix):
			err = appendDecoded(data, &snap.Revenue)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}

	sort.SliceStable(snap.Contacts, func(i, j int) bool {
		a, b := snap.Contacts[i], snap.Contacts[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	sort.SliceStable(snap.Deals, func(i, j int) bool {
		a, b := snap.Deals[i], snap.Deals[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	sort.SliceStable(snap.Activities, func(i, j int) bool {
		return snap.Activities[i].Date.After(snap.Activities[j].Date)
	})
	sort.SliceStable(snap.Campaigns, func(i, j int) bool {
		return snap.Campaigns[i].CreatedAt.After(snap.Campaigns[j].CreatedAt)
	})

	return &snap, nil
}

// MoveDeal updates a stored deal's stage, maintaining its closed timestamp.
func (c *Client) MoveDeal(_ context.Context, id string, stage models.Stage, at time.Time) error {
	if !stage.Valid() {
		return fmt.Errorf("invalid stage: %s", stage)
	}

	key := []byte(DealPrefix + id)
	data, err := c.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return db.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read deal: %w", err)
	}

	var deal models.Deal
	if err := json.Unmarshal(data, &deal); err != nil {
		return fmt.Errorf("failed to decode deal: %w", err)
	}

	switch {
	case stage == models.StageClosed && deal.ClosedAt == nil:
		closed := at.UTC()
		deal.ClosedAt = &closed
	case stage != models.StageClosed:
		deal.ClosedAt = nil
	}
	deal.Stage = stage

	data, err = json.Marshal(deal)
	if err != nil {
		return fmt.Errorf("failed to encode deal: %w", err)
	}
	return c.Set(key, data)
}

func appendDecoded[T any](data []byte, into *[]T) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*into = append(*into, v)
	return nil
}

func isRecordKey(k []byte) bool {
	for _, p := range recordPrefixes {
		if bytes.HasPrefix(k, []byte(p)) {
			return true
		}
	}
	return false
}
