package warehouse

import (
	"context"
	"strings"
	"sync"
)

// Fake is an in-memory Service double for tests. Results are scripted:
// each RunQuery pops the next entry from QueryResults and each RunMerge
// pops the next entry from MergeResults; when a script runs out the call
// returns the zero result. Every call is recorded for assertions.
type Fake struct {
	mu sync.Mutex

	QueryResults [][]Row
	MergeResults []int64
	QueryErr     error
	MergeErr     error
	AppendErr    error

	Queries  []FakeCall
	Merges   []FakeCall
	Appended map[string][]Row
	Created  []string
}

// FakeCall records one statement execution.
type FakeCall struct {
	SQL    string
	Params []Param
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{Appended: make(map[string][]Row)}
}

func (f *Fake) RunQuery(_ context.Context, sql string, params ...Param) ([]Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queries = append(f.Queries, FakeCall{SQL: sql, Params: params})
	if f.QueryErr != nil {
		return nil, f.QueryErr
	}
	if len(f.QueryResults) == 0 {
		return nil, nil
	}
	rows := f.QueryResults[0]
	f.QueryResults = f.QueryResults[1:]
	return rows, nil
}

func (f *Fake) RunMerge(_ context.Context, sql string, params ...Param) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Merges = append(f.Merges, FakeCall{SQL: sql, Params: params})
	if f.MergeErr != nil {
		return 0, f.MergeErr
	}
	if len(f.MergeResults) == 0 {
		return 0, nil
	}
	n := f.MergeResults[0]
	f.MergeResults = f.MergeResults[1:]
	return n, nil
}

func (f *Fake) AppendRows(_ context.Context, table string, rows []Row) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AppendErr != nil {
		return f.AppendErr
	}
	f.Appended[table] = append(f.Appended[table], rows...)
	return nil
}

func (f *Fake) CreateTable(_ context.Context, name string, _ TableDef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created = append(f.Created, name)
	return nil
}

// MergesMatching returns the recorded merges whose SQL contains the
// substring.
func (f *Fake) MergesMatching(substr string) []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FakeCall
	for _, c := range f.Merges {
		if strings.Contains(c.SQL, substr) {
			out = append(out, c)
		}
	}
	return out
}
