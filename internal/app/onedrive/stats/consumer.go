package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Consumer 消费转换统计事件，批量落库。
type Consumer struct {
	db        *pgxpool.Pool
	collector *ChannelCollector
	batchSize int
	interval  time.Duration
}

func NewConsumer(db *pgxpool.Pool, collector *ChannelCollector) *Consumer {
	return &Consumer{
		db:        db,
		collector: collector,
		batchSize: 100,
		interval:  time.Second,
	}
}

// Run 阻塞消费循环：攒够一批或到时间就刷一次。
func (c *Consumer) Run(ctx context.Context) {
	batch := make([]ConversionEvent, 0, c.batchSize)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flush(c.db, batch)
			return
		case event, ok := <-c.collector.Events():
			if !ok {
				flush(c.db, batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= c.batchSize {
				flush(c.db, batch)
				batch = batch[:0] // 清空切片但保留容量，避免反复分配
			}
		case <-ticker.C:
			if len(batch) > 0 {
				flush(c.db, batch)
				batch = batch[:0]
			}
		}
	}
}

// flush 把一批事件写入明细表并累加计数表。
// Channel 与 Kafka 两条消费路径共用。
func flush(db *pgxpool.Pool, batch []ConversionEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		slog.Error("conversion stats: begin tx failed", "err", err)
		return
	}
	defer tx.Rollback(context.Background())

	for _, e := range batch {
		if _, err := tx.Exec(ctx,
			`INSERT INTO conversion_stats (family,outcome,source,duration_ms,ip,user_agent,converted_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			e.Family, e.Outcome, e.Source, e.DurationMS, e.IP, e.UserAgent, e.ConvertedAt); err != nil {
			slog.Error("conversion stats: insert failed", "err", err, "family", e.Family)
			continue
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO conversion_counters (family,outcome,total) VALUES ($1,$2,1)
			 ON CONFLICT (family,outcome) DO UPDATE SET total = conversion_counters.total + 1`,
			e.Family, e.Outcome); err != nil {
			slog.Error("conversion stats: update counter failed", "err", err, "family", e.Family)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Error("conversion stats: commit failed", "err", err)
	} else {
		slog.Debug("conversion stats: flushed", "count", len(batch))
	}
}
