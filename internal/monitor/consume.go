package monitor

import (
	"context"
	"time"

	"github.com/Hara602/devSentry/internal/model"
	"go.uber.org/zap"
)

const DefaultDrainInterval = 500 * time.Millisecond

// Consume 唯一的消费者：每个 interval 以及队列就绪时把当前事件全部取出，逐条交给 sink
// ctx 取消时做最后一次 drain 再返回
func (m *Monitor) Consume(ctx context.Context, interval time.Duration, sink func(model.UsageEvent)) {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.flush(sink)
			return
		case <-ticker.C:
			m.flush(sink)
		case <-m.queue.Ready():
			m.flush(sink)
		}
	}
}

func (m *Monitor) flush(sink func(model.UsageEvent)) {
	for _, ev := range m.queue.Drain() {
		m.deliver(sink, ev)
	}
}

func (m *Monitor) deliver(sink func(model.UsageEvent), ev model.UsageEvent) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("event sink panicked",
				zap.String("category", ev.Category.String()),
				zap.String("process", ev.ProcessName),
				zap.Any("panic", r))
		}
	}()
	sink(ev)
}
