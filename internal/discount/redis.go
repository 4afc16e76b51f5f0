package discount

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mmeshcher/tariff-core/internal/model"
)

// RedisKey — ключ хэша со скидками: поле — план, значение — доля скидки.
const RedisKey = "tariff:discounts"

// RedisStore хранит скидки в хэше Redis.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore подключается к Redis по адресу addr и проверяет соединение.
func NewRedisStore(addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// NewRedisStoreFromClient создаёт хранилище поверх готового клиента.
func NewRedisStoreFromClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Close закрывает клиент Redis.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// GetDiscount возвращает скидку плана или ноль, если поле отсутствует.
func (s *RedisStore) GetDiscount(ctx context.Context, plan string) (decimal.Decimal, error) {
	raw, err := s.rdb.HGet(ctx, RedisKey, plan).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("hget discount: %w", err)
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse discount %q: %w", raw, err)
	}
	if err := checkSourceRate(rate); err != nil {
		return decimal.Zero, fmt.Errorf("redis: %w", err)
	}
	return rate, nil
}

// SetDiscount записывает скидку плана.
func (s *RedisStore) SetDiscount(ctx context.Context, plan string, rate decimal.Decimal) error {
	if err := ValidateRate(rate); err != nil {
		return err
	}
	if err := s.rdb.HSet(ctx, RedisKey, plan, rate.String()).Err(); err != nil {
		return fmt.Errorf("hset discount: %w", err)
	}
	return nil
}

// ListDiscounts возвращает все скидки, отсортированные по плану.
func (s *RedisStore) ListDiscounts(ctx context.Context) ([]model.Discount, error) {
	all, err := s.rdb.HGetAll(ctx, RedisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall discounts: %w", err)
	}

	res := make([]model.Discount, 0, len(all))
	for plan, raw := range all {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse discount %q: %w", raw, err)
		}
		res = append(res, model.Discount{Plan: model.Plan(plan), Rate: rate})
	}
	sortDiscounts(res)

	return res, nil
}
