package config

import "sync/atomic"

// Store 持有当前生效的配置。热加载是整体替换指针，
// 请求路径上的读取方拿到的是不可变快照，无需加锁
type Store struct {
	current atomic.Pointer[Config]
}

func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Current 返回当前配置快照。调用方不得修改返回值
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Replace 原子替换整个配置
func (s *Store) Replace(cfg *Config) {
	s.current.Store(cfg)
}
