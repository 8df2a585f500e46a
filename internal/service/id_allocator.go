package service

import (
	"sync"
	"time"
)

// IDAllocator 为任务分配唯一且单调递增的 ID。
// Observe 告知分配器已存在的 ID，之后分配的值一定更大。
type IDAllocator interface {
	Next() int64
	Observe(id int64)
}

// ClockIDAllocator 以毫秒时间戳为基准分配 ID，同一毫秒内连续分配时顺延。
type ClockIDAllocator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewClockIDAllocator 构造基于时钟的分配器，now 为空时使用 time.Now。
func NewClockIDAllocator(now func() time.Time) *ClockIDAllocator {
	if now == nil {
		now = time.Now
	}
	return &ClockIDAllocator{now: now}
}

func (a *ClockIDAllocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	candidate := a.now().UnixMilli()
	if candidate <= a.last {
		candidate = a.last + 1
	}
	a.last = candidate
	return candidate
}

func (a *ClockIDAllocator) Observe(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id > a.last {
		a.last = id
	}
}

// SequenceIDAllocator 是从 1 开始的简单计数器。
type SequenceIDAllocator struct {
	mu   sync.Mutex
	last int64
}

func (a *SequenceIDAllocator) Next() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last++
	return a.last
}

func (a *SequenceIDAllocator) Observe(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id > a.last {
		a.last = id
	}
}
