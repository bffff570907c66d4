package calculation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/calcfhir/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const calcColumns = `id, temperature, heart_rate, respiratory_rate, wbc,
	sirs_met, criteria_count, criteria_details, created_at`

// EnsureSchema applies the embedded migrations, creating sirs_calculations
// on first use.
func (r *repoPG) EnsureSchema(ctx context.Context) error {
	if _, err := db.NewMigrator(r.pool, db.Migrations()).Up(ctx); err != nil {
		return fmt.Errorf("ensure calculation schema: %w", err)
	}
	return nil
}

func (r *repoPG) Create(ctx context.Context, c *Calculation) error {
	details, err := marshalDetails(c.CriteriaDetails)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO sirs_calculations (
			temperature, heart_rate, respiratory_rate, wbc,
			sirs_met, criteria_count, criteria_details
		) VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		RETURNING id, created_at`,
		c.Temperature, c.HeartRate, c.RespiratoryRate, c.WBC,
		c.SIRSMet, c.CriteriaCount, details,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Calculation, error) {
	c, err := scanCalculation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+calcColumns+` FROM sirs_calculations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get calculation %d: %w", id, err)
	}
	return c, nil
}

func (r *repoPG) ListRecent(ctx context.Context, limit, offset int) ([]*Calculation, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM sirs_calculations`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calculations: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, `SELECT `+calcColumns+` FROM sirs_calculations
		ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list calculations: %w", err)
	}
	defer rows.Close()

	var items []*Calculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan calculation: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate calculations: %w", err)
	}
	return items, total, nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM sirs_calculations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete calculation %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Clear(ctx context.Context) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM sirs_calculations`)
	if err != nil {
		return 0, fmt.Errorf("clear calculations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanCalculation(row pgx.Row) (*Calculation, error) {
	var c Calculation
	var details []byte
	if err := row.Scan(&c.ID, &c.Temperature, &c.HeartRate, &c.RespiratoryRate, &c.WBC,
		&c.SIRSMet, &c.CriteriaCount, &details, &c.CreatedAt); err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &c.CriteriaDetails); err != nil {
			return nil, fmt.Errorf("decode criteria_details: %w", err)
		}
	}
	return &c, nil
}

func marshalDetails(d map[string]CriterionDetail) (string, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode criteria_details: %w", err)
	}
	return string(b), nil
}
