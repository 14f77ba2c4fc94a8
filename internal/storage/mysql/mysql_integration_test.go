//go:build integration || !unit

package mysql_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"stay_offers/internal/domain"
	"stay_offers/internal/fixtures"
	mysqlrepo "stay_offers/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sqlx.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sqlx.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=stay_offers",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/stay_offers?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))
	var db *sqlx.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sqlx.Connect("mysql", dsn)
		return e
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	applyMigrations(t, db)
	return db
}

func TestRepo_MySQL_PropertyContextRoundTrip(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	want := fixtures.DefaultProperty()
	want.Commerce.RoomTiers = map[string]string{"KSTE": "suite"}
	if err := repo.UpsertPropertyContext(ctx, want); err != nil {
		t.Fatalf("UpsertPropertyContext: %v", err)
	}

	got, err := repo.GetPropertyContext(ctx, want.PropertyID)
	if err != nil {
		t.Fatalf("GetPropertyContext: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch\n got: %+v\nwant: %+v", got, want)
	}

	// Re-upserting with fewer rules replaces the rule set.
	want.Cancellation = want.Cancellation[:1]
	want.Commerce.StrategyMode = "revenue"
	if err := repo.UpsertPropertyContext(ctx, want); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err = repo.GetPropertyContext(ctx, want.PropertyID)
	if err != nil {
		t.Fatalf("GetPropertyContext: %v", err)
	}
	if len(got.Cancellation) != 1 || got.Commerce.StrategyMode != "revenue" {
		t.Fatalf("after replace: %+v", got)
	}
}

func TestRepo_MySQL_UnknownProperty(t *testing.T) {
	db := startMySQL(t)
	_, err := mysqlrepo.New(db).GetPropertyContext(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
