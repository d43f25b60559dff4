package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

var ErrInvalidSerial = errors.New("sr_no must be a number")

type Repository struct {
	db *sql.DB
}

// NewRepository opens the SQLite database at path and makes sure the schema
// exists. ":memory:" gives a private in-memory database.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *Repository) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS vehicle_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		row_id TEXT UNIQUE,
		city TEXT NOT NULL,
		sr_no INTEGER,
		vrn TEXT,
		model TEXT,
		entry_date TEXT,
		in_time TEXT,
		out_date TEXT,
		out_time TEXT,
		remarks TEXT,
		rev INTEGER NOT NULL DEFAULT 0
	)
	`
	if _, err := r.db.Exec(query); err != nil {
		return err
	}
	if err := r.ensureRevColumn(); err != nil {
		return err
	}
	_, err := r.db.Exec("CREATE INDEX IF NOT EXISTS idx_vehicle_reports_entry_date ON vehicle_reports(entry_date)")
	return err
}

// ensureRevColumn adds the rev column to databases created before it existed.
func (r *Repository) ensureRevColumn() error {
	rows, err := r.db.Query("SELECT name FROM pragma_table_info('vehicle_reports')")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == "rev" {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = r.db.Exec("ALTER TABLE vehicle_reports ADD COLUMN rev INTEGER NOT NULL DEFAULT 0")
	return err
}

const insertQuery = `
	INSERT INTO vehicle_reports
	(row_id, city, sr_no, vrn, model, entry_date, in_time, out_date, out_time, remarks, rev)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const upsertQuery = insertQuery + `
	ON CONFLICT(row_id) DO UPDATE SET
		city = excluded.city,
		sr_no = excluded.sr_no,
		vrn = excluded.vrn,
		model = excluded.model,
		entry_date = excluded.entry_date,
		in_time = excluded.in_time,
		out_date = excluded.out_date,
		out_time = excluded.out_time,
		remarks = excluded.remarks,
		rev = excluded.rev
	WHERE excluded.rev >= vehicle_reports.rev
`

// CreateMany stores all records in one transaction. Either every record is
// written or none is.
func (r *Repository) CreateMany(ctx context.Context, records []Record) error {
	args := make([][]any, len(records))
	for i, rec := range records {
		a, err := insertArgs(rec)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		args[i] = a
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range args {
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Save stores a single record. A record carrying a row id replaces whatever
// was saved earlier for that row, unless the stored one has a later revision.
func (r *Repository) Save(ctx context.Context, rec Record) error {
	a, err := insertArgs(rec)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, upsertQuery, a...)
	return err
}

func insertArgs(rec Record) ([]any, error) {
	var serial sql.NullInt64
	if s := strings.TrimSpace(rec.Serial); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSerial, rec.Serial)
		}
		serial = sql.NullInt64{Int64: n, Valid: true}
	}
	var rowID sql.NullString
	if rec.RowID != "" {
		rowID = sql.NullString{String: rec.RowID, Valid: true}
	}
	return []any{
		rowID, rec.City, serial, rec.VRN, rec.Model,
		rec.EntryDate, rec.EntryTime, rec.ExitDate, rec.ExitTime, string(rec.Remarks),
		rec.Revision,
	}, nil
}

const selectColumns = "row_id, city, sr_no, vrn, model, entry_date, in_time, out_date, out_time, remarks, rev"

// All returns every stored record, newest entry date first.
func (r *Repository) All(ctx context.Context) ([]Record, error) {
	return r.query(ctx,
		"SELECT "+selectColumns+" FROM vehicle_reports ORDER BY entry_date DESC, city, sr_no",
	)
}

// ByDate returns the records whose entry date is date, ordered by city and
// serial number.
func (r *Repository) ByDate(ctx context.Context, date string) ([]Record, error) {
	return r.query(ctx,
		"SELECT "+selectColumns+" FROM vehicle_reports WHERE entry_date = ? ORDER BY city, sr_no",
		date,
	)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var rowID, vrn, model, entryDate, entryTime, exitDate, exitTime, remarks sql.NullString
		var serial sql.NullInt64
		if err := rows.Scan(
			&rowID, &rec.City, &serial, &vrn, &model,
			&entryDate, &entryTime, &exitDate, &exitTime, &remarks,
			&rec.Revision,
		); err != nil {
			return nil, err
		}
		rec.RowID = rowID.String
		if serial.Valid {
			rec.Serial = strconv.FormatInt(serial.Int64, 10)
		}
		rec.VRN = vrn.String
		rec.Model = model.String
		rec.EntryDate = entryDate.String
		rec.EntryTime = entryTime.String
		rec.ExitDate = exitDate.String
		rec.ExitTime = exitTime.String
		rec.Remarks = Remarks(remarks.String)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}
