// Package repotest has fakes for services written against repokit
package repotest

import (
	"context"
	"errors"
	"sync"

	"weatherjar/internal/modkit/repokit"
)

// ErrDirectSQL is returned when a test reads through the fake
var ErrDirectSQL = errors.New("repotest: direct sql on fake TxRunner")

// Tx is a TxRunner whose transactions just call fn. Binders in tests ignore
// the Queryer, so it only records how many transactions ran, whether they
// committed and which statements begin hooks sent
type Tx struct {
	mu        sync.Mutex
	Begun     int
	Committed int
	Execs     []string
	// Err, when set, fails every transaction before fn runs
	Err error
}

// Exec implements repokit.Queryer. Statements are recorded and succeed
func (t *Tx) Exec(_ context.Context, sql string, _ ...any) (repokit.CommandTag, error) {
	t.mu.Lock()
	t.Execs = append(t.Execs, sql)
	t.mu.Unlock()
	return nil, nil
}

// Query implements repokit.Queryer
func (t *Tx) Query(context.Context, string, ...any) (repokit.Rows, error) {
	return nil, ErrDirectSQL
}

// QueryRow implements repokit.Queryer
func (t *Tx) QueryRow(context.Context, string, ...any) repokit.Row { return errRow{} }

// Tx implements repokit.TxRunner
func (t *Tx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	t.mu.Lock()
	t.Begun++
	t.mu.Unlock()
	if t.Err != nil {
		return t.Err
	}
	if err := fn(t); err != nil {
		return err
	}
	t.mu.Lock()
	t.Committed++
	t.mu.Unlock()
	return nil
}

// Counts returns begun and committed transactions
func (t *Tx) Counts() (begun, committed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.Begun, t.Committed
}

type errRow struct{}

func (errRow) Scan(...any) error { return ErrDirectSQL }

// Binder binds every Queryer to the same repo value
func Binder[T any](repo T) repokit.Binder[T] {
	return repokit.BindFunc[T](func(repokit.Queryer) T { return repo })
}
