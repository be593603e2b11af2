package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// ================= FAKE DRIVER =================
//

// fakeDB answers the two lookups the helper issues from in-memory tables.
type fakeDB struct {
	frequencies map[string][]driver.Value
	delaf       map[string][]driver.Value // keyed by word, or word+"/"+pos
	fail        error
	queries     []string
}

func (f *fakeDB) Connect(context.Context) (driver.Conn, error) { return &fakeConn{db: f}, nil }
func (f *fakeDB) Driver() driver.Driver                       { return f }
func (f *fakeDB) Open(string) (driver.Conn, error)            { return &fakeConn{db: f}, nil }

type fakeConn struct{ db *fakeDB }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeStmt{db: c.db, query: query}, nil
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return nil, errors.New("no transactions") }

type fakeStmt struct {
	db    *fakeDB
	query string
}

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }
func (s *fakeStmt) Exec([]driver.Value) (driver.Result, error) {
	return nil, errors.New("read only")
}

func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.db.queries = append(s.db.queries, s.query)
	if s.db.fail != nil {
		return nil, s.db.fail
	}

	word := args[0].(string)
	switch {
	case strings.Contains(s.query, "FROM frequencies"):
		return rowsOf([]string{"word", "freq", "freq_perc", "texts", "texts_perc"}, s.db.frequencies[word]), nil
	case strings.Contains(s.query, "FROM delaf"):
		key := word
		if len(args) > 1 {
			key += "/" + args[1].(string)
		}
		return rowsOf([]string{"word", "lemma", "pos", "morf"}, s.db.delaf[key]), nil
	}
	return nil, errors.New("unexpected query: " + s.query)
}

type fakeRows struct {
	cols []string
	row  []driver.Value
	done bool
}

func rowsOf(cols []string, row []driver.Value) *fakeRows {
	return &fakeRows{cols: cols, row: row, done: row == nil}
}

func (r *fakeRows) Columns() []string { return r.cols }
func (r *fakeRows) Close() error      { return nil }
func (r *fakeRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	copy(dest, r.row)
	r.done = true
	return nil
}

func newFakeHelper(t *testing.T) (*Helper, *fakeDB) {
	t.Helper()
	fake := &fakeDB{
		frequencies: map[string][]driver.Value{
			"casa": {"casa", int64(1520), 0.012, int64(340), 0.3},
		},
		delaf: map[string][]driver.Value{
			"casas":   {"casas", "casa", "N", "fp"},
			"casas/V": {"casas", "casar", "V", "P2s"},
		},
	}
	h := NewHelper(sql.OpenDB(fake))
	t.Cleanup(func() { _ = h.Close() })
	return h, fake
}

//
// ================= TESTS =================
//

func TestFrequency(t *testing.T) {
	h, _ := newFakeHelper(t)
	ctx := context.Background()

	f, err := h.Frequency(ctx, "casa")
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, Frequency{Word: "casa", Freq: 1520, FreqPerc: 0.012, Texts: 340, TextsPerc: 0.3}, *f)

	f, err = h.Frequency(ctx, "xyzzy")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestDelafWord(t *testing.T) {
	h, fake := newFakeHelper(t)
	ctx := context.Background()

	d, err := h.DelafWord(ctx, "casas", "")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "casa", d.Lemma)

	d, err = h.DelafWord(ctx, "casas", "V")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "casar", d.Lemma)
	assert.Contains(t, fake.queries[len(fake.queries)-1], "AND pos = ?")

	d, err = h.DelafWord(ctx, "nada", "")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestQueryErrorsAreWrapped(t *testing.T) {
	h, fake := newFakeHelper(t)
	boom := errors.New("connection reset")
	fake.fail = boom

	_, err := h.Frequency(context.Background(), "casa")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"casa"`)
}

func TestOptions(t *testing.T) {
	opts := DefaultOptions()
	require.NoError(t, opts.Validate())
	dsn := opts.DSN()
	assert.True(t, strings.HasPrefix(dsn, "cohmetrix:coh-metrix@tcp(localhost:3306)/cohmetrix_pt_BR?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "timeout=5s")

	bad := opts
	bad.Port = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidOptions)

	bad = opts
	bad.DBName = ""
	assert.ErrorIs(t, bad.Validate(), ErrInvalidOptions)
}

func TestOpenRejectsInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Host = ""
	_, err := Open(context.Background(), opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestOpenFailsWithoutServer(t *testing.T) {
	opts := DefaultOptions()
	opts.Host = "127.0.0.1"
	opts.Port = 1
	opts.Timeout = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Open(ctx, opts)
	assert.ErrorContains(t, err, "failed to connect")
}
