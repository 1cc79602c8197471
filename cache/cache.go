// Package cache keeps objects read from disk, such as weight files, so that
// every search in a process shares one copy.
package cache

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

type cache struct {
	sync.Mutex
	objects map[string]any
}

var globalObjectCache = &cache{objects: make(map[string]any)}

func (c *cache) get(key string, load func(string) (any, error)) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting obj from cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading into cache")
	obj, err := load(key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

// Load returns the object stored under key, calling load to create it the
// first time. Failed loads are not stored.
func Load[T any](key string, load func(string) (T, error)) (T, error) {
	obj, err := globalObjectCache.get(key, func(k string) (any, error) {
		return load(k)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached object %v has type %T", key, obj)
	}
	return t, nil
}

// Forget drops key, so the next Load reads it again.
func Forget(key string) {
	globalObjectCache.Lock()
	defer globalObjectCache.Unlock()
	delete(globalObjectCache.objects, key)
}
