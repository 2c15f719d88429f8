package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ccourse/core"
	"github.com/trezcool/ccourse/core/course"
	"github.com/trezcool/ccourse/core/material"
	"github.com/trezcool/ccourse/core/schedule"
	"github.com/trezcool/ccourse/core/user"
	"github.com/trezcool/ccourse/storage/database"
	inmemdb "github.com/trezcool/ccourse/storage/database/inmem"
	sqlxrepos "github.com/trezcool/ccourse/storage/database/sqlx"
)

const (
	Postgres = "postgres"
	InMemory = "inmem"
)

// Repositories bundles the repositories of one storage backend.
type Repositories struct {
	Users    user.Repository
	Progress course.ProgressRepository
	Schedule schedule.Repository
	Material material.Repository

	// DB is nil for the in-memory backend.
	DB    *sqlx.DB
	close func() error
}

type Options struct {
	SkipMigrations bool
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Open builds the repositories of the configured backend.
// With postgres, the database is created when missing and migrated before use, unless opts says otherwise.
func Open(ctx context.Context, conf *core.Config, opts Options) (*Repositories, error) {
	switch conf.Storage {
	case InMemory:
		db := inmemdb.Open()
		return &Repositories{
			Users:    inmemdb.NewUserRepository(db),
			Progress: inmemdb.NewProgressRepository(db),
			Schedule: inmemdb.NewScheduleRepository(db),
			Material: inmemdb.NewMaterialRepository(db),
		}, nil

	case Postgres, "":
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, errors.Wrap(err, "creating database")
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if !opts.SkipMigrations {
			if err = database.Migrate(db); err != nil {
				_ = db.Close()
				return nil, errors.Wrap(err, "migrating database")
			}
		}
		return &Repositories{
			Users:    sqlxrepos.NewUserRepository(db),
			Progress: sqlxrepos.NewProgressRepository(db),
			Schedule: sqlxrepos.NewScheduleRepository(db),
			Material: sqlxrepos.NewMaterialRepository(db),
			DB:       db,
			close:    db.Close,
		}, nil

	default:
		return nil, errors.Errorf("unknown storage %q", conf.Storage)
	}
}
