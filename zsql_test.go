package zsql_test

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"zgo.at/zsql"
	"zgo.at/zsql/drivers/sqlite"
)

func TestDB(t *testing.T) {
	db := sqlite.StartTest(t)
	ctx := context.Background()

	err := db.Exec(ctx, `create table pets (
		pet_id   integer primary key,
		name     varchar not null,
		species  varchar not null default 'cat'
	)`, nil)
	if err != nil {
		t.Fatal(err)
	}

	n, err := db.Insert(ctx, "pets", zsql.P{"name": "Spot", "species": "dog"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || db.InsertID() != 1 {
		t.Fatalf("n = %d, insert id = %d", n, db.InsertID())
	}
	if _, err := db.Insert(ctx, "pets", zsql.P{"name": "Whiskers"}); err != nil {
		t.Fatal(err)
	}

	n, err = db.Update(ctx, "pets", zsql.P{"species": "tabby"}, zsql.P{"name": "Whiskers"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("update changed %d rows", n)
	}

	{
		r, err := db.Query(ctx, `select * from pets order by pet_id`, nil)
		if err != nil {
			t.Fatal(err)
		}
		want := `
			pet_id  name      species
			1       Spot      dog
			2       Whiskers  tabby`
		if d := zsql.Diff(r.DumpString(), want); d != "" {
			t.Error(d)
		}
	}

	{
		ins := db.NewBulkInsert(ctx, "pets", []string{"name", "species"})
		ins.Values("Rex", "dog")
		ins.Values("Tweety", "bird")
		if err := ins.Finish(); err != nil {
			t.Fatal(err)
		}

		count, err := db.GetVar(ctx, `select count(*) from pets`, nil, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if count != int64(4) {
			t.Fatalf("count = %v", count)
		}
	}

	{
		pairs, err := db.GetPairs(ctx, `select name, species from pets`, nil, 0, 1)
		if err != nil {
			t.Fatal(err)
		}
		want := map[string]any{"Spot": "dog", "Whiskers": "tabby", "Rex": "dog", "Tweety": "bird"}
		if !reflect.DeepEqual(pairs, want) {
			t.Errorf("\nhave: %v\nwant: %v", pairs, want)
		}
	}

	{
		names, err := db.GetColumn(ctx, `select name from pets order by name`, nil, 0)
		if err != nil {
			t.Fatal(err)
		}
		want := []any{"Rex", "Spot", "Tweety", "Whiskers"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("\nhave: %v\nwant: %v", names, want)
		}
	}

	_, err = db.GetRow(ctx, `select * from pets`, nil, 99, zsql.ShapeMap)
	if !zsql.ErrNoRows(err) {
		t.Errorf("wrong error: %v", err)
	}

	if len(db.Queries()) == 0 {
		t.Error("query log is empty")
	}
	if q := db.LongQueries(); len(q) != 0 {
		t.Errorf("long queries: %v", q)
	}
}

func TestDBUnique(t *testing.T) {
	db := sqlite.StartTest(t)
	db.HideErrors()
	ctx := context.Background()

	err := db.Exec(ctx, `create table pets (name varchar not null)`, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = db.Exec(ctx, `create unique index pets_name on pets (name)`, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.Insert(ctx, "pets", zsql.P{"name": "Spot"}); err != nil {
		t.Fatal(err)
	}
	_, err = db.Insert(ctx, "pets", zsql.P{"name": "Spot"})
	if err == nil || !db.ErrUnique(err) {
		t.Errorf("wrong error: %v", err)
	}
}

func TestDBPrefix(t *testing.T) {
	db := sqlite.StartTest(t)
	ctx := context.Background()

	db.TablePrefix("app_")
	err := db.Exec(ctx, `create table {{prefix}}tags (tag varchar)`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Insert(ctx, "{{prefix}}tags", zsql.P{"tag": "go"}); err != nil {
		t.Fatal(err)
	}

	v, err := db.GetVar(ctx, `select tag from {{prefix}}tags`, nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != "go" {
		t.Errorf("v = %v", v)
	}
	if want := "select tag from app_tags"; db.LastQuery() != want {
		t.Errorf("\nhave: %q\nwant: %q", db.LastQuery(), want)
	}

	db.NoTablePrefix()
	v, err = db.GetVar(ctx, `select tag from app_tags`, nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v != "go" {
		t.Errorf("v = %v", v)
	}
}

func TestDBExplain(t *testing.T) {
	db := sqlite.StartTest(t)
	ctx := context.Background()

	err := db.Exec(ctx, `create table pets (pet_id integer primary key, name varchar)`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Insert(ctx, "pets", zsql.P{"name": "Spot"}); err != nil {
		t.Fatal(err)
	}

	buf := new(bytes.Buffer)
	err = db.Explain(ctx, buf, `select name from pets where pet_id = :id`, zsql.P{"id": 1})
	if err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "QUERY:\n\tselect name from pets where pet_id = 1\nEXPLAIN:\n") {
		t.Errorf("explain output: %q", out)
	}
	if !strings.Contains(out, "SEARCH") || !strings.Contains(out, "Time:") {
		t.Errorf("explain output: %q", out)
	}
}

func TestDBTables(t *testing.T) {
	db := sqlite.StartTest(t)
	ctx := context.Background()

	err := db.Exec(ctx, `create table pets (name varchar)`, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Insert(ctx, "pets", zsql.P{"name": "Spot"}); err != nil {
		t.Fatal(err)
	}

	if err := db.Truncate(ctx, "pets"); err != nil {
		t.Fatal(err)
	}
	count, err := db.GetVar(ctx, `select count(*) from pets`, nil, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if count != int64(0) {
		t.Errorf("count = %v", count)
	}

	tables, err := db.ListTables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"pets"}; !reflect.DeepEqual(tables, want) {
		t.Errorf("\nhave: %v\nwant: %v", tables, want)
	}

	if err := db.DropTable(ctx, "pets"); err != nil {
		t.Fatal(err)
	}
	tables, err = db.ListTables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 0 {
		t.Errorf("tables after drop: %v", tables)
	}
}
