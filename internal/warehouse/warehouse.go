// Package warehouse provides access to the analytical warehouse. The
// Service interface is the only seam the engines see; the production
// implementation runs on BigQuery and tests use the Fake.
package warehouse

import "context"

// Row is a single result row keyed by column name.
type Row map[string]any

// String returns the named column as a string, or "" when absent or of
// another type.
func (r Row) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int64 returns the named column as *int64, or nil when absent, NULL or
// of another type.
func (r Row) Int64(key string) *int64 {
	switch v := r[key].(type) {
	case int64:
		return &v
	case int:
		n := int64(v)
		return &n
	default:
		return nil
	}
}

// Param is a named query parameter bound into a statement.
type Param struct {
	Name  string
	Value any
}

// Service is the warehouse client used by every engine. SQL passed in may
// contain the {project} and {dataset} placeholders, which implementations
// substitute before execution.
type Service interface {
	// RunQuery executes a SELECT and returns all rows.
	RunQuery(ctx context.Context, sql string, params ...Param) ([]Row, error)
	// RunMerge executes a DML statement (MERGE/UPDATE/DELETE) and returns
	// the number of affected rows.
	RunMerge(ctx context.Context, sql string, params ...Param) (int64, error)
	// AppendRows streams rows into a table.
	AppendRows(ctx context.Context, table string, rows []Row) error
	// CreateTable creates a table from its registry definition if it does
	// not already exist.
	CreateTable(ctx context.Context, name string, def TableDef) error
}
