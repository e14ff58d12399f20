package group

import (
	"context"

	"github.com/gocraft/dbr/v2"
	"github.com/pkg/errors"
)

// MySQLStore is a group store backed by MySQL through dbr
type MySQLStore struct {
	db *dbr.Connection
}

// NewMySQLStore returns a group store with MySQL used as a backend
func NewMySQLStore(db *dbr.Connection) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &MySQLStore{db}, nil
}

func (s *MySQLStore) get(ctx context.Context, q string, args ...interface{}) (g Group, err error) {
	err = s.db.NewSession(nil).
		SelectBySql(q, args...).
		LoadOneContext(ctx, &g)

	if err != nil {
		if err == dbr.ErrNotFound {
			return g, ErrGroupNotFound
		}

		return g, err
	}

	return g, nil
}

func (s *MySQLStore) getIDs(ctx context.Context, q string, args ...interface{}) (ids []string, err error) {
	ids = make([]string, 0)

	if _, err = s.db.NewSession(nil).SelectBySql(q, args...).LoadContext(ctx, &ids); err != nil {
		return nil, err
	}

	return ids, nil
}

// UpsertGroup stores a group, replacing an existing record with the same id
func (s *MySQLStore) UpsertGroup(ctx context.Context, g Group) (Group, error) {
	if g.ID == "" {
		return g, ErrEmptyGroupID
	}

	_, err := s.db.NewSession(nil).
		InsertBySql(
			"INSERT INTO `kb_group` (id, `key`, name, description) VALUES (?, ?, ?, ?)"+
				" ON DUPLICATE KEY UPDATE `key` = VALUES(`key`), name = VALUES(name), description = VALUES(description)",
			g.ID, g.Key, g.Name, g.Description,
		).
		ExecContext(ctx)

	if err != nil {
		return g, errors.Wrap(err, "failed to upsert group")
	}

	return g, nil
}

// FetchGroupByID retrieves a group by id
func (s *MySQLStore) FetchGroupByID(ctx context.Context, groupID string) (Group, error) {
	return s.get(ctx, "SELECT * FROM `kb_group` WHERE id = ? LIMIT 1", groupID)
}

// FetchGroupByKey retrieves a group by its machine key
func (s *MySQLStore) FetchGroupByKey(ctx context.Context, key string) (Group, error) {
	return s.get(ctx, "SELECT * FROM `kb_group` WHERE `key` = ? LIMIT 1", key)
}

// FetchAllGroups returns every stored group ordered by key
func (s *MySQLStore) FetchAllGroups(ctx context.Context) (gs []Group, err error) {
	if _, err = s.db.NewSession(nil).
		SelectBySql("SELECT * FROM `kb_group` ORDER BY `key`").
		LoadContext(ctx, &gs); err != nil {
		return nil, err
	}

	return gs, nil
}

// DeleteByID removes a group along with its membership relations
func (s *MySQLStore) DeleteByID(ctx context.Context, groupID string) error {
	sess := s.db.NewSession(nil)

	res, err := sess.DeleteFrom("kb_group").Where("id = ?", groupID).ExecContext(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to delete group")
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if ra == 0 {
		return ErrGroupNotFound
	}

	if _, err = sess.DeleteFrom("kb_group_user").Where("group_id = ?", groupID).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "failed to delete group relations")
	}

	return nil
}

// PutRelation stores a group-user membership relation
func (s *MySQLStore) PutRelation(ctx context.Context, groupID string, userID string) error {
	if groupID == "" {
		return ErrEmptyGroupID
	}

	if userID == "" {
		return ErrEmptyUserID
	}

	_, err := s.db.NewSession(nil).
		InsertBySql(
			"INSERT IGNORE INTO `kb_group_user` (group_id, user_id) VALUES (?, ?)",
			groupID, userID,
		).
		ExecContext(ctx)

	if err != nil {
		return errors.Wrap(err, "failed to store group user relation")
	}

	return nil
}

// HasRelation tests whether a membership relation exists
func (s *MySQLStore) HasRelation(ctx context.Context, groupID string, userID string) (bool, error) {
	ids, err := s.getIDs(
		ctx,
		"SELECT user_id FROM `kb_group_user` WHERE group_id = ? AND user_id = ? LIMIT 1",
		groupID, userID,
	)

	if err != nil {
		return false, err
	}

	return len(ids) > 0, nil
}

// DeleteRelation removes a membership relation
func (s *MySQLStore) DeleteRelation(ctx context.Context, groupID string, userID string) error {
	_, err := s.db.NewSession(nil).
		DeleteFrom("kb_group_user").
		Where("group_id = ? AND user_id = ?", groupID, userID).
		ExecContext(ctx)

	if err != nil {
		return errors.Wrap(err, "failed to delete group user relation")
	}

	return nil
}

// FetchGroupIDsByUserID returns the ids of groups a user belongs to
func (s *MySQLStore) FetchGroupIDsByUserID(ctx context.Context, userID string) ([]string, error) {
	return s.getIDs(ctx, "SELECT group_id FROM `kb_group_user` WHERE user_id = ? ORDER BY group_id", userID)
}

// FetchUserIDsByGroupID returns the ids of a group's members
func (s *MySQLStore) FetchUserIDsByGroupID(ctx context.Context, groupID string) ([]string, error) {
	return s.getIDs(ctx, "SELECT user_id FROM `kb_group_user` WHERE group_id = ? ORDER BY user_id", groupID)
}
