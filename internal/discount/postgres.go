package discount

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/tariff-core/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// pgxPool — часть *pgxpool.Pool, которую использует хранилище.
type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresStore хранит скидки в PostgreSQL.
type PostgresStore struct {
	pool   pgxPool
	delays []time.Duration
}

// NewPostgresStore создаёт хранилище и применяет миграции схемы.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return newPostgresStore(pool), nil
}

func newPostgresStore(pool pgxPool) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// Close закрывает пул соединений с БД.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// GetDiscount возвращает скидку плана или ноль, если запись отсутствует.
func (s *PostgresStore) GetDiscount(ctx context.Context, plan string) (decimal.Decimal, error) {
	var raw string
	err := withRetry(ctx, s.delays, func() error {
		return s.pool.QueryRow(ctx,
			`SELECT rate::text FROM discounts WHERE plan = $1`,
			plan,
		).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("select discount: %w", err)
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse discount %q: %w", raw, err)
	}
	if err := checkSourceRate(rate); err != nil {
		return decimal.Zero, fmt.Errorf("postgres: %w", err)
	}
	return rate, nil
}

// SetDiscount создаёт или обновляет скидку плана.
func (s *PostgresStore) SetDiscount(ctx context.Context, plan string, rate decimal.Decimal) error {
	if err := ValidateRate(rate); err != nil {
		return err
	}

	err := withRetry(ctx, s.delays, func() error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO discounts (plan, rate) VALUES ($1, $2::numeric)
			 ON CONFLICT (plan) DO UPDATE SET rate = EXCLUDED.rate, updated_at = now()`,
			plan, rate.String(),
		)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == pgerrcode.CheckViolation || pgErr.Code == pgerrcode.NumericValueOutOfRange) {
			return fmt.Errorf("%w: %s", ErrRateOutOfRange, rate)
		}
		return fmt.Errorf("upsert discount: %w", err)
	}
	return nil
}

// ListDiscounts возвращает все сохранённые скидки.
func (s *PostgresStore) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	rows, err := s.pool.Query(ctx, `SELECT plan, rate::text FROM discounts ORDER BY plan`)
	if err != nil {
		return nil, fmt.Errorf("select discounts: %w", err)
	}
	defer rows.Close()

	var res []model.Discount
	for rows.Next() {
		var plan, raw string
		if err := rows.Scan(&plan, &raw); err != nil {
			return nil, fmt.Errorf("scan discount: %w", err)
		}

		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse discount %q: %w", raw, err)
		}

		res = append(res, model.Discount{Plan: model.Plan(plan), Rate: rate})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func withRetry(ctx context.Context, delays []time.Duration, fn func() error) error {
	var err error

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil || !isRetryable(err) || i == len(delays) {
			return err
		}

		timer := time.NewTimer(delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}
