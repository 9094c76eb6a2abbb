package leaselock

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/alterfero/dig4el-sub001/internal/util"
	"github.com/alterfero/dig4el-sub001/pkg/logger"
)

var (
	ErrBusy = errors.New("lease lock busy")
	ErrLost = errors.New("lease lock lost")
)

const renewAttempts = 3

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Client hands out expiring locks stored in the app_locks table. Builds of
// one language are serialized through it so two workers never write the
// same snapshot at once.
type Client struct {
	db dbConn
}

// Options controls lease duration and how Acquire behaves when the lock is
// held. Zero values get defaults.
type Options struct {
	TTL        time.Duration
	RenewEvery time.Duration

	Wait         bool
	WaitInterval time.Duration
	WaitJitter   time.Duration

	// Holder names who owns the lease, usually a build correlation id. It
	// prefixes the stored token and shows up in logs.
	Holder string
}

// Lease is a held lock. Context is canceled when the lease is released or
// can no longer be renewed; the cause is ErrLost in the latter case.
type Lease struct {
	Key     string
	Holder  string
	Token   string
	Context context.Context

	client *Client
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// New creates a client on a pool, connection or transaction.
func New(db dbConn) *Client {
	return &Client{db: db}
}

// BuildKey is the lock key serializing knowledge-graph builds of a language.
func BuildKey(language string) string {
	return "build:" + strings.ToLower(strings.TrimSpace(language))
}

// BuildOptions are the lease settings used around a build. A build waits for
// a running build of the same language instead of failing.
func BuildOptions(correlationID string) Options {
	return Options{
		TTL:          2 * time.Minute,
		RenewEvery:   45 * time.Second,
		Wait:         true,
		WaitInterval: time.Second,
		WaitJitter:   500 * time.Millisecond,
		Holder:       correlationID,
	}
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 5 * time.Minute
	}
	if o.RenewEvery <= 0 || o.RenewEvery >= o.TTL {
		o.RenewEvery = max(o.TTL/2, time.Second)
	}
	if o.WaitInterval <= 0 {
		o.WaitInterval = 250 * time.Millisecond
	}
	o.WaitJitter = max(o.WaitJitter, 0)
	return o
}

// WithLease runs fn while holding key. fn receives the lease context and
// should stop when it is canceled.
func (c *Client) WithLease(ctx context.Context, key string, opts Options, fn func(ctx context.Context) error) error {
	lease, err := c.Acquire(ctx, key, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := lease.Release(context.Background()); err != nil {
			logger.Warn("[Lock] Failed to release lease", "key", lease.Key, "holder", lease.Holder, "err", err)
		}
	}()
	return fn(lease.Context)
}

// Acquire takes key, polling while another holder has it if opts.Wait is set.
func (c *Client) Acquire(ctx context.Context, key string, opts Options) (*Lease, error) {
	if key == "" {
		return nil, errors.New("lease lock key is empty")
	}
	opts = opts.withDefaults()

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	token := id
	if opts.Holder != "" {
		token = opts.Holder + "/" + id
	}

	start := time.Now()
	waited := false
	for {
		ok, err := c.tryAcquire(ctx, key, token, opts.TTL)
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if !opts.Wait {
			return nil, ErrBusy
		}
		if !waited {
			logger.Info("[Lock] Another build holds the lease, waiting", "key", key, "holder", opts.Holder)
			waited = true
		}
		if err := sleep(ctx, opts.WaitInterval, opts.WaitJitter); err != nil {
			return nil, err
		}
	}
	if waited {
		logger.Info("[Lock] Lease acquired", "key", key, "holder", opts.Holder, "waited", time.Since(start).Round(time.Millisecond))
	} else {
		logger.Debug("[Lock] Lease acquired", "key", key, "holder", opts.Holder)
	}

	leaseCtx, cancel := context.WithCancelCause(ctx)
	l := &Lease{
		Key:     key,
		Holder:  opts.Holder,
		Token:   token,
		Context: leaseCtx,
		client:  c,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go l.keepAlive(opts)
	return l, nil
}

func (c *Client) tryAcquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	var got string
	err := c.db.QueryRow(ctx, tryAcquireSQL, key, token, ttl.Milliseconds()).Scan(&got)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return got != "", nil
}

// Release stops renewal and deletes the row if this lease still owns it.
// Calling it twice is safe.
func (l *Lease) Release(ctx context.Context) error {
	l.cancel(context.Canceled)
	<-l.done
	_, err := l.client.db.Exec(ctx, releaseSQL, l.Key, l.Token)
	return err
}

func (l *Lease) keepAlive(opts Options) {
	defer close(l.done)
	t := time.NewTicker(opts.RenewEvery)
	defer t.Stop()

	for {
		select {
		case <-l.Context.Done():
			return
		case <-t.C:
			if err := l.renew(opts.TTL); err != nil {
				if l.Context.Err() != nil {
					return
				}
				logger.Warn("[Lock] Lease lost, aborting build", "key", l.Key, "holder", l.Holder, "err", err)
				l.cancel(errors.Join(ErrLost, err))
				return
			}
		}
	}
}

func (l *Lease) renew(ttl time.Duration) error {
	_, err := util.RetryWithContext(l.Context, renewAttempts, func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		var got string
		err := l.client.db.QueryRow(ctx, renewSQL, l.Key, l.Token, ttl.Milliseconds()).Scan(&got)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrLost
		}
		return got, err
	})
	return err
}

func sleep(ctx context.Context, base, jitter time.Duration) error {
	d := base
	if jitter > 0 {
		d += time.Duration(rand.Int64N(int64(jitter) + 1))
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const tryAcquireSQL = `
INSERT INTO app_locks (lock_key, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lock_key) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE app_locks.expires_at < now()
   OR app_locks.locked_by = EXCLUDED.locked_by
RETURNING lock_key;
`

const renewSQL = `
UPDATE app_locks
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE lock_key = $1 AND locked_by = $2
RETURNING lock_key;
`

const releaseSQL = `
DELETE FROM app_locks
WHERE lock_key = $1 AND locked_by = $2;
`
