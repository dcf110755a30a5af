package monitor

import (
	"sync"

	"github.com/Hara602/devSentry/internal/model"
)

// Queue 多生产者单消费者的无界队列，Push 永不阻塞
type Queue struct {
	mu    sync.Mutex
	items []model.UsageEvent
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

func (q *Queue) Push(ev model.UsageEvent) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()

	// 通知消费者，已有未处理的通知时直接跳过
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Drain 按到达顺序取走当前所有事件
func (q *Queue) Drain() []model.UsageEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready 有新事件入队时可读
func (q *Queue) Ready() <-chan struct{} { return q.ready }
