package db

import (
	"io"

	"github.com/pkg/errors"
)

// ErrNotFound 键不存在
var ErrNotFound = errors.New("not found")

// Item 键值对
type Item struct {
	Key   string
	Value string
}

type Reader interface {
	// Has retrieves if a key is present in the key-value data store.
	Has(key string) (bool, error)

	// Get retrieves the given key if it's present in the key-value data store.
	Get(key string) (string, error)

	// List retrieves all items whose key starts with prefix.
	List(prefix string) ([]Item, error)
}

type Writer interface {
	// Put inserts the given value into the key-value data store.
	Put(key string, value string) error

	// Delete removes the key from the key-value data store.
	Delete(key string) error
}

type Database interface {
	Reader
	Writer
	io.Closer
}

// 驱动名称
const (
	DriverNone    = "none"
	DriverRedis   = "redis"
	DriverLevelDB = "leveldb"
)

// Options 数据库连接参数
type Options struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	LevelDBPath   string
}

// Open 根据驱动打开数据库 驱动为空或 none 时返回 nil
func Open(opts Options) (Database, error) {
	switch opts.Driver {
	case "", DriverNone:
		return nil, nil
	case DriverRedis:
		return NewRedisDB(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case DriverLevelDB:
		return NewLevelDB(opts.LevelDBPath)
	}
	return nil, errors.Errorf("unknown journal driver %q", opts.Driver)
}
