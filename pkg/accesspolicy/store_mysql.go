package accesspolicy

import (
	"context"
	"database/sql"
	"time"

	"github.com/gocraft/dbr/v2"
	"github.com/pkg/errors"
)

// MySQLStore is a policy store backed by MySQL through dbr
type MySQLStore struct {
	db *dbr.Connection
}

// NewMySQLStore returns a policy store with MySQL used as a backend
func NewMySQLStore(db *dbr.Connection) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &MySQLStore{db}, nil
}

// policyRow carries a policy in its storable shape; the access control
// object travels as a nullable JSON column where NULL means public
type policyRow struct {
	ResourceID    string         `db:"resource_id"`
	OwnerID       string         `db:"owner_id"`
	AccessControl sql.NullString `db:"access_control"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r policyRow) policy() (p ResourcePolicy, err error) {
	p = ResourcePolicy{
		ResourceID: r.ResourceID,
		OwnerID:    r.OwnerID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}

	if !r.AccessControl.Valid || r.AccessControl.String == "" {
		return p, nil
	}

	ac := new(AccessControl)
	if err = json.Unmarshal([]byte(r.AccessControl.String), ac); err != nil {
		return p, errors.Wrap(err, "failed to unmarshal access control column")
	}

	p.AccessControl = ac

	return p, nil
}

func rowFromPolicy(p ResourcePolicy) (r policyRow, err error) {
	r = policyRow{
		ResourceID: p.ResourceID,
		OwnerID:    p.OwnerID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}

	if p.AccessControl == nil {
		return r, nil
	}

	buf, err := json.Marshal(p.AccessControl)
	if err != nil {
		return r, errors.Wrap(err, "failed to marshal access control")
	}

	r.AccessControl = sql.NullString{String: string(buf), Valid: true}

	return r, nil
}

func (s *MySQLStore) get(ctx context.Context, q string, args ...interface{}) (p ResourcePolicy, err error) {
	var row policyRow

	err = s.db.NewSession(nil).
		SelectBySql(q, args...).
		LoadOneContext(ctx, &row)

	if err != nil {
		if err == dbr.ErrNotFound {
			return p, ErrPolicyNotFound
		}

		return p, err
	}

	return row.policy()
}

// UpsertPolicy stores a policy, replacing an existing record keyed by
// the same resource id
func (s *MySQLStore) UpsertPolicy(ctx context.Context, p ResourcePolicy) (ResourcePolicy, error) {
	if p.ResourceID == "" {
		return p, ErrNoResourceID
	}

	row, err := rowFromPolicy(p)
	if err != nil {
		return p, err
	}

	_, err = s.db.NewSession(nil).
		InsertBySql(
			"INSERT INTO `kb_policy` (resource_id, owner_id, access_control, created_at, updated_at)"+
				" VALUES (?, ?, ?, ?, ?)"+
				" ON DUPLICATE KEY UPDATE owner_id = VALUES(owner_id), access_control = VALUES(access_control), updated_at = VALUES(updated_at)",
			row.ResourceID, row.OwnerID, row.AccessControl, row.CreatedAt, row.UpdatedAt,
		).
		ExecContext(ctx)

	if err != nil {
		return p, errors.Wrap(err, "failed to upsert resource policy")
	}

	return p, nil
}

// FetchByResourceID retrieves a policy by the resource it governs
func (s *MySQLStore) FetchByResourceID(ctx context.Context, resourceID string) (ResourcePolicy, error) {
	return s.get(ctx, "SELECT * FROM `kb_policy` WHERE resource_id = ? LIMIT 1", resourceID)
}

// FetchAll returns every stored policy ordered by resource id
func (s *MySQLStore) FetchAll(ctx context.Context) (ps []ResourcePolicy, err error) {
	var rows []policyRow

	if _, err = s.db.NewSession(nil).
		SelectBySql("SELECT * FROM `kb_policy` ORDER BY resource_id").
		LoadContext(ctx, &rows); err != nil {
		return nil, err
	}

	ps = make([]ResourcePolicy, 0, len(rows))

	for _, row := range rows {
		p, err := row.policy()
		if err != nil {
			return nil, err
		}

		ps = append(ps, p)
	}

	return ps, nil
}

// DeleteByResourceID removes a policy from the store
func (s *MySQLStore) DeleteByResourceID(ctx context.Context, resourceID string) error {
	res, err := s.db.NewSession(nil).
		DeleteFrom("kb_policy").
		Where("resource_id = ?", resourceID).
		ExecContext(ctx)

	if err != nil {
		return errors.Wrap(err, "failed to delete resource policy")
	}

	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if ra == 0 {
		return ErrPolicyNotFound
	}

	return nil
}
