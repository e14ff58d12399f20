package user

import (
	"context"

	"github.com/gocraft/dbr/v2"
	"github.com/pkg/errors"
)

// MySQLStore is a user store backed by MySQL through dbr
type MySQLStore struct {
	db *dbr.Connection
}

// NewMySQLStore returns a user store with MySQL used as a backend
func NewMySQLStore(db *dbr.Connection) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &MySQLStore{db}, nil
}

// UpsertUser stores a user record, replacing an existing one with the same id
func (s *MySQLStore) UpsertUser(ctx context.Context, u User) (User, error) {
	if u.ID == "" {
		return u, ErrEmptyUserID
	}

	_, err := s.db.NewSession(nil).
		InsertBySql(
			"INSERT INTO `kb_user` (id, name, email) VALUES (?, ?, ?)"+
				" ON DUPLICATE KEY UPDATE name = VALUES(name), email = VALUES(email)",
			u.ID, u.Name, u.Email,
		).
		ExecContext(ctx)

	if err != nil {
		return u, errors.Wrap(err, "failed to upsert user")
	}

	return u, nil
}

// FetchUserByID retrieves a user by id
func (s *MySQLStore) FetchUserByID(ctx context.Context, userID string) (u User, err error) {
	err = s.db.NewSession(nil).
		SelectBySql("SELECT * FROM `kb_user` WHERE id = ? LIMIT 1", userID).
		LoadOneContext(ctx, &u)

	if err != nil {
		if err == dbr.ErrNotFound {
			return u, ErrUserNotFound
		}

		return u, err
	}

	return u, nil
}

// FetchAllUsers returns every stored user ordered by id
func (s *MySQLStore) FetchAllUsers(ctx context.Context) (us []User, err error) {
	if _, err = s.db.NewSession(nil).
		SelectBySql("SELECT * FROM `kb_user` ORDER BY id").
		LoadContext(ctx, &us); err != nil {
		return nil, err
	}

	return us, nil
}

// DeleteByID removes a user record
func (s *MySQLStore) DeleteByID(ctx context.Context, userID string) error {
	res, err := s.db.NewSession(nil).
		DeleteFrom("kb_user").
		Where("id = ?", userID).
		ExecContext(ctx)

	if err != nil {
		return errors.Wrap(err, "failed to delete user")
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if ra == 0 {
		return ErrUserNotFound
	}

	return nil
}
