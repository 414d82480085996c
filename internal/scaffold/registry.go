package scaffold

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var globalRegistry = newRegistry()

type registry struct {
	mu    sync.RWMutex
	kinds map[string]KindMetadata
}

func newRegistry() *registry {
	return &registry{kinds: make(map[string]KindMetadata)}
}

// Register 将脚手架类型加入全局注册表，重复键会返回错误。
func Register(meta KindMetadata) error {
	return globalRegistry.register(meta)
}

// MustRegister 在注册失败时 panic，适合在 init() 中调用。
func MustRegister(meta KindMetadata) {
	if err := Register(meta); err != nil {
		panic(err)
	}
}

// Resolve 返回指定键的脚手架元数据，大小写不敏感。
func Resolve(key string) (KindMetadata, bool) {
	return globalRegistry.resolve(key)
}

// List 返回按键排序的脚手架元数据列表。
func List() []KindMetadata {
	return globalRegistry.list()
}

// Keys 返回所有已注册类型的键值。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, meta := range items {
		result[i] = meta.Key
	}
	return result
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func (r *registry) register(meta KindMetadata) error {
	key := normalizeKey(meta.Key)
	if key == "" {
		return fmt.Errorf("scaffold kind key is required")
	}
	if len(meta.Files) == 0 {
		return fmt.Errorf("scaffold kind %s declares no files", key)
	}
	meta.Key = key
	if meta.NameRule == "" {
		meta.NameRule = NameRuleIdentifier
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[key]; exists {
		return fmt.Errorf("scaffold kind %s already registered", key)
	}
	r.kinds[key] = meta
	return nil
}

func (r *registry) resolve(key string) (KindMetadata, bool) {
	normalized := normalizeKey(key)
	if normalized == "" {
		return KindMetadata{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.kinds[normalized]
	return meta, ok
}

func (r *registry) list() []KindMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.kinds) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.kinds))
	for key := range r.kinds {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]KindMetadata, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.kinds[key])
	}
	return result
}
