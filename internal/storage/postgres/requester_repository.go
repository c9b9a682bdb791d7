package postgres

import (
	"context"
	"fmt"

	"github.com/Bunny099/reservation-api/internal/domain"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dialectPostgres = "postgres"

type RequesterRepository struct {
	db
}

func NewRequesterRepository(pool *pgxpool.Pool, opts ...Option) *RequesterRepository {
	return &RequesterRepository{db: newDB(pool, opts)}
}

func (r *RequesterRepository) CreateRequester(ctx context.Context, requester domain.Requester) error {
	const stmt = `
INSERT INTO requesters (id, name, created_at)
VALUES ($1, $2, $3)`
	_, err := r.exec(ctx, stmt, requester.ID, requester.Name, requester.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create requester: %w", err)
	}
	return nil
}

// ListLeasesByRequester returns the requester's leases oldest first. The
// status filter is applied in SQL using the same expiry rule as CountLoad.
func (r *RequesterRepository) ListLeasesByRequester(ctx context.Context, requesterID string, filter domain.LeaseFilter) ([]domain.Lease, error) {
	query, args, err := listLeasesQuery(requesterID, filter)
	if err != nil {
		return nil, fmt.Errorf("build list leases: %w", err)
	}

	rows, err := r.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list leases: %w", err)
	}
	defer rows.Close()

	leases := []domain.Lease{}
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lease: %w", err)
		}
		leases = append(leases, l)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("iterate leases: %w", err)
	}
	return leases, nil
}

func listLeasesQuery(requesterID string, filter domain.LeaseFilter) (string, []any, error) {
	ds := goqu.Dialect(dialectPostgres).
		From("leases").
		Select(leaseColumns()...).
		Where(goqu.C("requester_id").Eq(requesterID)).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Prepared(true)

	if cond := statusCondition(filter); cond != nil {
		ds = ds.Where(cond)
	}
	return ds.ToSQL()
}

func statusCondition(filter domain.LeaseFilter) exp.Expression {
	switch filter.Status {
	case domain.LeaseStatusHeld:
		return goqu.And(
			goqu.C("status").Eq(string(domain.LeaseStatusHeld)),
			goqu.C("expires_at").Gt(filter.AsOf),
		)
	case domain.LeaseStatusExpired:
		return goqu.And(
			goqu.C("status").Eq(string(domain.LeaseStatusHeld)),
			goqu.C("expires_at").Lte(filter.AsOf),
		)
	case domain.LeaseStatusCommitted, domain.LeaseStatusCancelled:
		return goqu.C("status").Eq(string(filter.Status))
	}
	return nil
}

func leaseColumns() []any {
	return []any{"id", "room_id", "requester_id", "status", "expires_at", "idempotency_key", "created_at"}
}
