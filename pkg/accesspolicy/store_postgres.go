package accesspolicy

import (
	"context"

	"github.com/jackc/pgx"
	"github.com/pkg/errors"
)

// PostgreSQLStore is a policy store backed by PostgreSQL through pgx
type PostgreSQLStore struct {
	db *pgx.Conn
}

// NewPostgreSQLStore returns a policy store with PostgreSQL used as a backend
func NewPostgreSQLStore(db *pgx.Conn) (Store, error) {
	if db == nil {
		return nil, ErrNilDatabase
	}

	return &PostgreSQLStore{db}, nil
}

func (s *PostgreSQLStore) one(ctx context.Context, q string, args ...interface{}) (p ResourcePolicy, err error) {
	var acRaw string

	err = s.db.QueryRowEx(ctx, q, nil, args...).
		Scan(&p.ResourceID,
			&p.OwnerID,
			&acRaw,
			&p.CreatedAt,
			&p.UpdatedAt)

	switch err {
	case nil:
	case pgx.ErrNoRows:
		return p, ErrPolicyNotFound
	default:
		return p, errors.Wrap(err, "failed to scan resource policy")
	}

	if acRaw == "" {
		return p, nil
	}

	ac := new(AccessControl)
	if err = json.Unmarshal([]byte(acRaw), ac); err != nil {
		return p, errors.Wrap(err, "failed to unmarshal access control column")
	}

	p.AccessControl = ac

	return p, nil
}

// UpsertPolicy stores a policy, replacing an existing record keyed by
// the same resource id
func (s *PostgreSQLStore) UpsertPolicy(ctx context.Context, p ResourcePolicy) (ResourcePolicy, error) {
	if p.ResourceID == "" {
		return p, ErrNoResourceID
	}

	q := `
	INSERT INTO kb_policy(resource_id, owner_id, access_control, created_at, updated_at)
	VALUES($1, $2, $3, $4, $5)
	ON CONFLICT (resource_id)
	DO UPDATE
		SET owner_id = EXCLUDED.owner_id,
			access_control = EXCLUDED.access_control,
			updated_at = EXCLUDED.updated_at`

	// a NULL access control column means the resource is public
	var acArg interface{}
	if p.AccessControl != nil {
		buf, err := json.Marshal(p.AccessControl)
		if err != nil {
			return p, errors.Wrap(err, "failed to marshal access control")
		}

		acArg = string(buf)
	}

	_, err := s.db.ExecEx(ctx, q, nil, p.ResourceID, p.OwnerID, acArg, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return p, errors.Wrap(err, "failed to upsert resource policy")
	}

	return p, nil
}

// FetchByResourceID retrieves a policy by the resource it governs
func (s *PostgreSQLStore) FetchByResourceID(ctx context.Context, resourceID string) (ResourcePolicy, error) {
	q := `
	SELECT resource_id, owner_id, COALESCE(access_control, ''), created_at, updated_at
	FROM kb_policy WHERE resource_id = $1 LIMIT 1`

	return s.one(ctx, q, resourceID)
}

// FetchAll returns every stored policy ordered by resource id
func (s *PostgreSQLStore) FetchAll(ctx context.Context) (ps []ResourcePolicy, err error) {
	q := `
	SELECT resource_id, owner_id, COALESCE(access_control, ''), created_at, updated_at
	FROM kb_policy ORDER BY resource_id`

	rows, err := s.db.QueryEx(ctx, q, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch resource policies")
	}
	defer rows.Close()

	ps = make([]ResourcePolicy, 0)

	for rows.Next() {
		var p ResourcePolicy
		var acRaw string

		err := rows.Scan(&p.ResourceID, &p.OwnerID, &acRaw, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return ps, errors.Wrap(err, "failed to scan resource policies")
		}

		if acRaw != "" {
			ac := new(AccessControl)
			if err = json.Unmarshal([]byte(acRaw), ac); err != nil {
				return ps, errors.Wrap(err, "failed to unmarshal access control column")
			}

			p.AccessControl = ac
		}

		ps = append(ps, p)
	}

	return ps, nil
}

// DeleteByResourceID removes a policy from the store
func (s *PostgreSQLStore) DeleteByResourceID(ctx context.Context, resourceID string) error {
	cmd, err := s.db.ExecEx(ctx, "DELETE FROM kb_policy WHERE resource_id = $1", nil, resourceID)
	if err != nil {
		return errors.Wrap(err, "failed to delete resource policy")
	}

	if cmd.RowsAffected() == 0 {
		return ErrPolicyNotFound
	}

	return nil
}
