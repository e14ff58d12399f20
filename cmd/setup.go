package cmd

import (
	"github.com/anrid/kbguard/internal/core"
	"github.com/anrid/kbguard/pkg/accesspolicy"
	"github.com/anrid/kbguard/pkg/database"
	"github.com/anrid/kbguard/pkg/group"
	"github.com/anrid/kbguard/pkg/user"
	"github.com/anrid/kbguard/util"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// newStores assembles the storage backends selected by configuration.
// Group and user records are relational; with the postgres and badger
// policy backends they currently stay in memory.
// TODO: postgres-backed group and user stores
func newStores(logger *zap.Logger) (ps accesspolicy.Store, gs group.Store, us user.Store, err error) {
	gs = group.NewMemoryStore()
	us = user.NewMemoryStore()

	switch backend := viper.GetString("store.backend"); backend {
	case "", "memory":
		ps = accesspolicy.NewMemoryStore()
	case "mysql":
		conn, err := database.MySQLConnection(viper.GetString("store.mysql_dsn"))
		if err != nil {
			return nil, nil, nil, err
		}

		if ps, err = accesspolicy.NewMySQLStore(conn); err != nil {
			return nil, nil, nil, err
		}

		if gs, err = group.NewMySQLStore(conn); err != nil {
			return nil, nil, nil, err
		}

		if us, err = user.NewMySQLStore(conn); err != nil {
			return nil, nil, nil, err
		}
	case "postgres":
		conn, err := database.PostgreSQLConnection(viper.GetString("store.postgres_uri"), logger)
		if err != nil {
			return nil, nil, nil, err
		}

		if ps, err = accesspolicy.NewPostgreSQLStore(conn); err != nil {
			return nil, nil, nil, err
		}
	case "badger":
		db, err := util.OpenBadger(viper.GetString("store.badger_dir"))
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "failed to open badger database")
		}

		if ps, err = accesspolicy.NewBadgerStore(db); err != nil {
			return nil, nil, nil, err
		}
	default:
		return nil, nil, nil, errors.Errorf("unsupported store backend: %s", backend)
	}

	return ps, gs, us, nil
}

// buildCore wires the configured stores and managers into a core container
func buildCore(logger *zap.Logger) (*core.Core, error) {
	policyStore, groupStore, userStore, err := newStores(logger)
	if err != nil {
		return nil, err
	}

	policies, err := accesspolicy.NewManager(policyStore, logger)
	if err != nil {
		return nil, err
	}

	groups, err := group.NewManager(groupStore, logger)
	if err != nil {
		return nil, err
	}

	users, err := user.NewManager(userStore, logger)
	if err != nil {
		return nil, err
	}

	applier := accesspolicy.NewBulkApplier(logger, viper.GetInt("bulk_parallelism"))

	return core.New(logger, users, groups, policies, applier)
}
