package zsql

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"zgo.at/zstd/ztest"
)

func mockDB(t *testing.T, dialect Dialect) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	db := New(conn, dialect)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestQuery(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)
	ctx := context.Background()

	p := mock.ExpectPrepare(regexp.QuoteMeta("select name from pets where id = ?"))
	p.ExpectQuery().WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Spot"))

	r, err := db.Query(ctx, "select name from pets where id = :id", P{"id": 1})
	if err != nil {
		t.Fatal(err)
	}
	if r.Len() != 1 {
		t.Fatalf("wrong number of rows: %d", r.Len())
	}
	row, err := r.RowAt(0)
	if err != nil {
		t.Fatal(err)
	}
	if row.Index(0) != "Spot" {
		t.Errorf("wrong value: %v", row.Index(0))
	}

	if have := db.LastQuery(); have != "select name from pets where id = :id" {
		t.Errorf("LastQuery: %q", have)
	}
	if db.LastError() != nil {
		t.Errorf("LastError: %v", db.LastError())
	}
	if db.LastResult() != r {
		t.Error("LastResult isn't the returned Result")
	}
	if l := db.Queries(); len(l) != 1 || l[0].Query != "select name from pets where id = :id" {
		t.Errorf("log: %v", l)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQueryStmtReuse(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)
	ctx := context.Background()

	// One prepare, two runs.
	p := mock.ExpectPrepare(regexp.QuoteMeta("select name from pets where id = ?"))
	p.ExpectQuery().WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Spot"))
	p.ExpectQuery().WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Whiskers"))

	if _, err := db.Query(ctx, "select name from pets where id = :id", P{"id": 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Query(ctx, "select name from pets where id = :id", P{"id": 2}); err != nil {
		t.Fatal(err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStmtCacheEvict(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)
	ctx := context.Background()

	// The default cache holds one statement: the second query evicts the
	// first, so running the first again prepares it again.
	pa := mock.ExpectPrepare(regexp.QuoteMeta("select 1"))
	pa.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	pb := mock.ExpectPrepare(regexp.QuoteMeta("select 2"))
	pb.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"2"}).AddRow(int64(2)))
	pa2 := mock.ExpectPrepare(regexp.QuoteMeta("select 1"))
	pa2.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	for _, q := range []string{"select 1", "select 2", "select 1"} {
		if _, err := db.Query(ctx, q, nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestStmtCacheLarger(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)
	db.StmtCache(2)
	ctx := context.Background()

	// With room for two statements nothing gets evicted.
	pa := mock.ExpectPrepare(regexp.QuoteMeta("select 1"))
	pa.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	pb := mock.ExpectPrepare(regexp.QuoteMeta("select 2"))
	pb.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"2"}).AddRow(int64(2)))
	pa.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))

	for _, q := range []string{"select 1", "select 2", "select 1"} {
		if _, err := db.Query(ctx, q, nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestExec(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)
	ctx := context.Background()

	p := mock.ExpectPrepare(regexp.QuoteMeta("insert into pets (name) values (?)"))
	p.ExpectExec().WithArgs("Spot").WillReturnResult(sqlmock.NewResult(7, 1))

	if err := db.Exec(ctx, "insert into pets (name) values (:name)", P{"name": "Spot"}); err != nil {
		t.Fatal(err)
	}
	if db.InsertID() != 7 {
		t.Errorf("InsertID: %d", db.InsertID())
	}

	// An engine that reports no insert id doesn't clobber the last one.
	p2 := mock.ExpectPrepare(regexp.QuoteMeta("update pets set name = ?"))
	p2.ExpectExec().WithArgs("Rex").WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := db.NumRows(ctx, "update pets set name = :name", P{"name": "Rex"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("NumRows: %d", n)
	}
	if db.InsertID() != 7 {
		t.Errorf("InsertID after update: %d", db.InsertID())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestNumRowsSelect(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)

	p := mock.ExpectPrepare(regexp.QuoteMeta("select id from pets"))
	p.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"id"}).
		AddRow(int64(1)).AddRow(int64(2)))

	n, err := db.NumRows(context.Background(), "select id from pets", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("NumRows: %d", n)
	}
}

func TestQueryError(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)
	ctx := context.Background()

	mock.ExpectPrepare(regexp.QuoteMeta("select wrong")).
		WillReturnError(errors.New("oh noes"))

	buf := new(bytes.Buffer)
	db.ShowErrors()
	db.ErrorLog(buf)

	_, err := db.Query(ctx, "select wrong", nil)
	if !ztest.ErrorContains(err, "zsql.Query") || !ztest.ErrorContains(err, "oh noes") {
		t.Errorf("wrong error: %v", err)
	}
	if db.LastError() == nil {
		t.Error("LastError not set")
	}
	if have := buf.String(); !strings.Contains(have, "oh noes") ||
		!strings.Contains(have, "for query: select wrong") {
		t.Errorf("echo:\n%s", have)
	}
	if l := db.Queries(); len(l) != 1 || l[0].Query != "select wrong" {
		t.Errorf("failed query not logged: %v", l)
	}

	// HideErrors stops the echo; the error is still returned.
	db.HideErrors()
	buf.Reset()
	mock.ExpectPrepare(regexp.QuoteMeta("select wrong")).
		WillReturnError(errors.New("oh noes"))
	if _, err := db.Query(ctx, "select wrong", nil); err == nil {
		t.Fatal("no error")
	}
	if buf.Len() != 0 {
		t.Errorf("echo after HideErrors: %s", buf.String())
	}

	// A success clears LastError.
	p := mock.ExpectPrepare(regexp.QuoteMeta("select 1"))
	p.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	if _, err := db.Query(ctx, "select 1", nil); err != nil {
		t.Fatal(err)
	}
	if db.LastError() != nil {
		t.Errorf("LastError not cleared: %v", db.LastError())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestTablePrefix(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)
	ctx := context.Background()
	db.TablePrefix("wp_")

	p := mock.ExpectPrepare(regexp.QuoteMeta("select * from wp_posts"))
	p.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := db.Query(ctx, "select * from {{prefix}}posts", nil); err != nil {
		t.Fatal(err)
	}
	if db.LastQuery() != "select * from wp_posts" {
		t.Errorf("LastQuery: %q", db.LastQuery())
	}
	if db.Prefix() != "wp_" {
		t.Errorf("Prefix: %q", db.Prefix())
	}

	// Disabled: the macro text goes to the engine as-is.
	db.NoTablePrefix()
	p2 := mock.ExpectPrepare(regexp.QuoteMeta("select * from {{prefix}}posts"))
	p2.ExpectQuery().WillReturnRows(sqlmock.NewRows([]string{"id"}))
	if _, err := db.Query(ctx, "select * from {{prefix}}posts", nil); err != nil {
		t.Fatal(err)
	}
	if db.Prefix() != "" {
		t.Errorf("Prefix: %q", db.Prefix())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestDialectPlaceholders(t *testing.T) {
	db, mock := mockDB(t, DialectPostgreSQL)

	p := mock.ExpectPrepare(regexp.QuoteMeta("select name from pets where id = $1"))
	p.ExpectQuery().WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Spot"))

	if _, err := db.Query(context.Background(), "select name from pets where id = :id", P{"id": 1}); err != nil {
		t.Fatal(err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestParams(t *testing.T) {
	db, mock := mockDB(t, DialectSQLite)
	ctx := context.Background()

	// A leading ":" on the key is allowed.
	p := mock.ExpectPrepare(regexp.QuoteMeta("select ?"))
	p.ExpectQuery().WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"x"}).AddRow(int64(42)))
	if _, err := db.Query(ctx, "select :x", P{":x": 42}); err != nil {
		t.Fatal(err)
	}

	_, err := db.Query(ctx, "select :x", P{":x": 1, "x": 2})
	if !ztest.ErrorContains(err, "parameter given more than once") {
		t.Errorf("wrong error: %v", err)
	}

	_, err = db.Query(ctx, "select :x", nil)
	if !ztest.ErrorContains(err, `no value for parameter "x"`) {
		t.Errorf("wrong error: %v", err)
	}
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"select 1", true},
		{"  SELECT 1", true},
		{"(select 1) union (select 2)", true},
		{"select*from x", true},
		{"with x as (select 1) select * from x", true},
		{"show tables", true},
		{"describe x", true},
		{"desc x", true},
		{"explain select 1", true},
		{"pragma user_version", true},
		{"values (1)", true},
		{"table x", true},
		{"insert into x values (1)", false},
		{"update x set a=1", false},
		{"delete from x", false},
		{"create table x (a int)", false},
		{"drop table x", false},
		{"truncate table x", false},

		{"insert into x values (1) returning id", true},
		{"update x set a=1\nreturning a", true},
		{"delete from x returning *", true},
		{"insert into x (returning_at) values (1)", false},

		{"-- pets\nselect 1", true},
		{"/* pets */ select 1", true},
		{"-- a\n-- b\ndelete from x", false},
		{"-- only a comment", false},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			if have := returnsRows(tt.query); have != tt.want {
				t.Errorf("returnsRows(%q) = %t", tt.query, have)
			}
		})
	}
}
