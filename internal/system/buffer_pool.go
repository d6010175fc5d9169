package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует кадры *image.RGBA одного размера,
// чтобы рендер сотен кадров не нагружал Garbage Collector (GC).
type ImagePool struct {
	mu     sync.RWMutex
	pools  map[image.Point]*sync.Pool
	hits   atomic.Int64
	misses atomic.Int64
}

// PoolStats: счетчики пула для отчета о производительности
type PoolStats struct {
	Hits, Misses int64
}

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

var globalPool = NewImagePool()

// GetImage возвращает кадр из глобального пула.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает кадр в глобальный пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Get возвращает кадр размера rect. Содержимое не очищается: рендер всегда
// перезаписывает кадр целиком.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	pool := p.pool(rect.Size())
	if img, ok := pool.Get().(*image.RGBA); ok {
		p.hits.Add(1)
		img.Rect = rect
		return img
	}
	p.misses.Add(1)
	return image.NewRGBA(rect)
}

// Put возвращает кадр в пул.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Rect.Empty() {
		return
	}
	p.pool(img.Rect.Size()).Put(img)
}

func (p *ImagePool) Stats() PoolStats {
	return PoolStats{Hits: p.hits.Load(), Misses: p.misses.Load()}
}

func (p *ImagePool) pool(size image.Point) *sync.Pool {
	p.mu.RLock()
	pool, exists := p.pools[size]
	p.mu.RUnlock()
	if exists {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Double check
	if pool, exists = p.pools[size]; !exists {
		pool = &sync.Pool{}
		p.pools[size] = pool
	}
	return pool
}
