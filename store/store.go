// ABOUTME: Snapshot sources that feed the pipeline engine
// ABOUTME: Chooses between the local SQLite database and the hosted Charm KV from configuration
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/dealflow/charm"
	"github.com/harperreed/dealflow/config"
	"github.com/harperreed/dealflow/db"
	"github.com/harperreed/dealflow/models"
)

// Source supplies a consistent snapshot of every record collection.
type Source interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
}

// Mover changes a deal's stage.
type Mover interface {
	MoveDeal(ctx context.Context, id string, stage models.Stage, at time.Time) error
}

// SourceMover is a source whose deals can be moved.
type SourceMover interface {
	Source
	Mover
}

// SQLite reads snapshots from the local database.
type SQLite struct {
	DB *sql.DB
}

func NewSQLite(database *sql.DB) *SQLite {
	return &SQLite{DB: database}
}

func (s *SQLite) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return db.LoadSnapshot(s.DB)
}

func (s *SQLite) MoveDeal(ctx context.Context, id string, stage models.Stage, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return db.MoveDeal(s.DB, id, stage, at)
}

// Open returns the source named by cfg.Store. The SQLite database is opened lazily by
// the caller and passed in since write commands share it.
func Open(cfg *config.Config, database *sql.DB) (SourceMover, error) {
	switch cfg.Store {
	case config.StoreSQLite, "":
		if database == nil {
			return nil, fmt.Errorf("sqlite store requires an open database")
		}
		return NewSQLite(database), nil
	case config.StoreCharm:
		c, err := charm.GetClient()
		if err != nil {
			return nil, fmt.Errorf("failed to open charm store: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("invalid store: %s (valid: sqlite, charm)", cfg.Store)
	}
}

// Static serves a fixed snapshot. Moves update the in-memory copy.
type Static struct {
	snap *models.Snapshot
}

func NewStatic(snap *models.Snapshot) *Static {
	if snap == nil {
		snap = &models.Snapshot{}
	}
	return &Static{snap: snap}
}

func (s *Static) Snapshot(context.Context) (*models.Snapshot, error) {
	cp := *s.snap
	cp.Deals = make([]models.Deal, len(s.snap.Deals))
	for i, d := range s.snap.Deals {
		cp.Deals[i] = d.Clone()
	}
	return &cp, nil
}

func (s *Static) MoveDeal(_ context.Context, id string, stage models.Stage, at time.Time) error {
	if !stage.Valid() {
		return fmt.Errorf("invalid stage: %s", stage)
	}
	for i := range s.snap.Deals {
		if s.snap.Deals[i].ID != id {
			continue
		}
		s.snap.Deals[i].Stage = stage
		if stage == models.StageClosed {
			if s.snap.Deals[i].ClosedAt == nil {
				closed := at
				s.snap.Deals[i].ClosedAt = &closed
			}
		} else {
			s.snap.Deals[i].ClosedAt = nil
		}
		return nil
	}
	return db.ErrNotFound
}
