package db

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// TransferDB 交易记录所在的 hash
const TransferDB = "Transfer"

// RedisDB 所有键存放在同一个 redis hash 中
type RedisDB struct {
	rdb  *redis.Client
	hash string
}

// NewRedisDB 数据库链接初始化
func NewRedisDB(addr, password string, db int) (*RedisDB, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	res, err := rdb.Ping(context.Background()).Result()
	if err != nil {
		log.Error().Msgf("Connection err is %s ", err.Error())
		return nil, errors.Wrap(err, "redis ping")
	}
	log.Info().Msgf("Connection res is %v ", res)
	return NewRedisDBWithClient(rdb), nil
}

func NewRedisDBWithClient(rdb *redis.Client) *RedisDB {
	return &RedisDB{rdb: rdb, hash: TransferDB}
}

func (r *RedisDB) Has(key string) (bool, error) {
	return r.rdb.HExists(context.Background(), r.hash, key).Result()
}

func (r *RedisDB) Get(key string) (string, error) {
	res, err := r.rdb.HGet(context.Background(), r.hash, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return res, err
}

func (r *RedisDB) List(prefix string) ([]Item, error) {
	// TODO 数据量大时改为 HSCAN 分批读取
	res, err := r.rdb.HGetAll(context.Background(), r.hash).Result()
	if err != nil {
		return nil, err
	}
	var items []Item
	for k, v := range res {
		if strings.HasPrefix(k, prefix) {
			items = append(items, Item{Key: k, Value: v})
		}
	}
	return items, nil
}

func (r *RedisDB) Put(key string, value string) error {
	return r.rdb.HSet(context.Background(), r.hash, key, value).Err()
}

func (r *RedisDB) Delete(key string) error {
	return r.rdb.HDel(context.Background(), r.hash, key).Err()
}

func (r *RedisDB) Close() error {
	return r.rdb.Close()
}
