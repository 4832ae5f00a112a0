package register

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Repository persists attendance records in Postgres. It is the sole owner of
// record identity and durability; policies hold records only transiently.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, full_name, contact, email, role, purpose, date, time_in, time_out, status`

// Create appends a record, assigning a fresh id.
func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, full_name, contact, email, role, purpose, date, time_in, time_out, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, rec.ID, rec.FullName, rec.Contact, rec.Email, rec.Role, rec.Purpose, rec.Date, rec.TimeIn, rec.TimeOut, rec.Status)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ByName returns every record for an exact full-name match, newest first.
func (r *Repository) ByName(ctx context.Context, name string) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE full_name = $1
		ORDER BY time_in DESC
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// All returns the full record set, newest first.
func (r *Repository) All(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		ORDER BY time_in DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CompleteCheckout transitions one record to checkedOut. A single UPDATE keeps
// the status/time_out pair atomic and leaves every other column alone.
func (r *Repository) CompleteCheckout(ctx context.Context, id string, timeOut time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET status = $2, time_out = $3
		WHERE id = $1
	`, id, StatusCheckedOut, timeOut)
	return err
}

// DeleteAll clears the register. Irreversible.
func (r *Repository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records`)
	return err
}

// ActiveCount counts open sessions without loading the whole set; feeds the
// occupancy gauge.
func (r *Repository) ActiveCount(ctx context.Context) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records WHERE status = $1
	`, StatusCheckedIn)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.FullName, &rec.Contact, &rec.Email, &rec.Role, &rec.Purpose, &rec.Date, &rec.TimeIn, &rec.TimeOut, &rec.Status); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
