package leaselock

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/alterfero/dig4el-sub001/pkg/logger/memory"
)

type row struct {
	key string
	err error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.key
	return nil
}

type fakeDB struct {
	mu       sync.Mutex
	holder   string
	released []string
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	key, token := args[0].(string), args[1].(string)
	switch {
	case strings.Contains(sql, "INSERT INTO app_locks"):
		if f.holder != "" && f.holder != token {
			return row{err: pgx.ErrNoRows}
		}
		f.holder = token
	case strings.Contains(sql, "UPDATE app_locks"):
		if f.holder != token {
			return row{err: pgx.ErrNoRows}
		}
	}
	return row{key: key}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token := args[1].(string); token == f.holder {
		f.holder = ""
		f.released = append(f.released, token)
	}
	return pgconn.NewCommandTag("DELETE 1"), nil
}

func TestAcquireAndRelease(t *testing.T) {
	db := &fakeDB{}
	c := New(db)
	ctx := context.Background()

	lease, err := c.Acquire(ctx, BuildKey(" English "), Options{Holder: "corr-1"})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if lease.Key != "build:english" || !strings.HasPrefix(lease.Token, "corr-1/") || lease.Holder != "corr-1" {
		t.Errorf("unexpected lease: %s %s", lease.Key, lease.Token)
	}

	if _, err := c.Acquire(ctx, lease.Key, Options{}); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if lease.Context.Err() == nil {
		t.Error("lease context should be canceled after release")
	}
	if len(db.released) != 1 {
		t.Errorf("expected one release, got %v", db.released)
	}
}

func TestWithLease(t *testing.T) {
	db := &fakeDB{}
	c := New(db)
	called := false
	err := c.WithLease(context.Background(), "build:french", BuildOptions("corr-2"), func(ctx context.Context) error {
		called = true
		return ctx.Err()
	})
	if err != nil || !called {
		t.Fatalf("WithLease: called=%v err=%v", called, err)
	}
	if db.holder != "" {
		t.Error("lease was not released")
	}
}

func TestAcquireWaitHonorsContext(t *testing.T) {
	db := &fakeDB{holder: "someone-else"}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(db).Acquire(ctx, "build:english", Options{Wait: true, WaitInterval: 10 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestOptionsNormalize(t *testing.T) {
	o := Options{TTL: time.Minute, RenewEvery: 2 * time.Minute}.withDefaults()
	if o.RenewEvery != 30*time.Second || o.WaitInterval != 250*time.Millisecond {
		t.Errorf("unexpected options: %+v", o)
	}
}

func TestAcquireLogsWaitingBuild(t *testing.T) {
	mem := memory.NewMemoryLogger()
	logger.Init(mem)
	defer logger.Init()

	db := &fakeDB{holder: "corr-1/abc"}
	go func() {
		time.Sleep(30 * time.Millisecond)
		db.mu.Lock()
		db.holder = ""
		db.mu.Unlock()
	}()

	lease, err := New(db).Acquire(context.Background(), BuildKey("french"), Options{Wait: true, WaitInterval: 5 * time.Millisecond, Holder: "corr-2"})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lease.Release(context.Background())

	waiting := mem.Find("info", "waiting")
	if len(waiting) != 1 {
		t.Fatalf("expected one waiting record, got %v", mem.Records())
	}
	if v, _ := waiting[0].Value("holder"); v != "corr-2" {
		t.Errorf("holder = %v, want corr-2", v)
	}
	if v, _ := waiting[0].Value("key"); v != "build:french" {
		t.Errorf("key = %v, want build:french", v)
	}
}

func TestLeaseLostCancelsBuild(t *testing.T) {
	mem := memory.NewMemoryLogger()
	logger.Init(mem)
	defer logger.Init()

	db := &fakeDB{}
	lease, err := New(db).Acquire(context.Background(), BuildKey("english"), Options{TTL: time.Second, RenewEvery: 10 * time.Millisecond, Holder: "corr-3"})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	db.mu.Lock()
	db.holder = "corr-4/other"
	db.mu.Unlock()

	select {
	case <-lease.Context.Done():
	case <-time.After(time.Second):
		t.Fatal("lease context was not canceled after losing the lock")
	}
	if cause := context.Cause(lease.Context); !errors.Is(cause, ErrLost) {
		t.Errorf("cause = %v, want ErrLost", cause)
	}
	if len(mem.Find("warn", "Lease lost")) != 1 {
		t.Errorf("expected a lease lost warning, got %v", mem.Records())
	}
	if err := lease.Release(context.Background()); err != nil {
		t.Errorf("Release: %v", err)
	}
}
