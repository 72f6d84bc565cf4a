package repository

// scanner is satisfied by both *sql.Row and *sql.Rows so each entity needs a
// single scan helper.
type scanner interface {
	Scan(dest ...any) error
}
