package config

import "strings"

const (
	StoreBackendSQLite = "sqlite"
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

type StoreConfig interface {
	GetStoreBackend() string
	GetSQLitePath() string
	GetRedisAddr() string
	GetRedisKeyPrefix() string
	GetSessionCacheEnabled() bool
}

type Store struct {
	Backend      string `env:"STORE_BACKEND,default=sqlite"`
	SQLitePath   string `env:"SQLITE_PATH,default=./data/bridge.db"`
	RedisAddr    string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPrefix  string `env:"REDIS_KEY_PREFIX,default=bridge:"`
	SessionCache bool   `env:"SESSION_CACHE,default=true"`
}

var _ StoreConfig = Store{}

func (s Store) GetStoreBackend() string {
	return strings.ToLower(s.Backend)
}

func (s Store) GetSQLitePath() string {
	return s.SQLitePath
}

func (s Store) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Store) GetRedisKeyPrefix() string {
	return s.RedisPrefix
}

func (s Store) GetSessionCacheEnabled() bool {
	return s.SessionCache
}
