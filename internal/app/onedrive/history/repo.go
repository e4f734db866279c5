package history

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("conversion not found")

// maxEntries 与原工具一致：历史记录最多保留 100 条，新的顶掉旧的。
const maxEntries = 100

// Conversion 是一条转换历史记录。
type Conversion struct {
	ID          string    `json:"id"` // sqids 公开 ID
	OriginalURL string    `json:"original_url"`
	DirectURL   string    `json:"direct_url"`
	Remark      string    `json:"remark"`
	Family      string    `json:"family"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repo 是转换历史的 Postgres 仓库。
// seen 可为 nil；有值时先用布隆过滤器挡掉对不存在公开 ID 的查库。
type Repo struct {
	db   *pgxpool.Pool
	seen *BloomFilter
}

func NewRepo(db *pgxpool.Pool, seen *BloomFilter) *Repo {
	return &Repo{db: db, seen: seen}
}

// Warmup 把已有记录的公开 ID 灌进布隆过滤器（启动时调用一次）。
func (r *Repo) Warmup(ctx context.Context) error {
	if r.seen == nil {
		return nil
	}
	rows, err := r.db.Query(ctx, `SELECT public_id FROM conversions WHERE public_id IS NOT NULL`)
	if err != nil {
		return err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		r.seen.Add(id)
		n++
	}
	slog.Info("历史记录布隆过滤器预热完成", "count", n)
	return rows.Err()
}

// Save 保存一条转换记录：按 original_url 去重（重复保存会更新原记录），
// 并把总量裁剪到 maxEntries。
func (r *Repo) Save(ctx context.Context, originalURL, directURL, remark, family string) (Conversion, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.db.Begin(dbctx)
	if err != nil {
		return Conversion{}, err
	}
	defer tx.Rollback(dbctx)

	var id int64
	var publicID string
	if err := tx.QueryRow(dbctx, `
INSERT INTO conversions (original_url, direct_url, remark, family)
VALUES ($1, $2, $3, $4)
ON CONFLICT (original_url) DO UPDATE
  SET direct_url = EXCLUDED.direct_url,
      remark     = EXCLUDED.remark,
      family     = EXCLUDED.family,
      updated_at = NOW()
RETURNING id, COALESCE(public_id, '')`,
		originalURL, directURL, remark, family,
	).Scan(&id, &publicID); err != nil {
		return Conversion{}, err
	}

	if publicID == "" {
		newID, err := encodeID(uint64(id))
		if err != nil {
			return Conversion{}, err
		}
		// 只在缺失时补写；被并发事务抢先时回退到 SELECT。
		if err := tx.QueryRow(dbctx,
			`UPDATE conversions SET public_id=$1 WHERE id=$2 AND public_id IS NULL RETURNING public_id`,
			newID, id,
		).Scan(&publicID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				if err := tx.QueryRow(dbctx, `SELECT public_id FROM conversions WHERE id=$1`, id).Scan(&publicID); err != nil {
					return Conversion{}, err
				}
			} else {
				return Conversion{}, err
			}
		}
	}

	// 裁剪到上限：按更新时间保留最新 maxEntries 条。
	if _, err := tx.Exec(dbctx, `
DELETE FROM conversions
WHERE id IN (SELECT id FROM conversions ORDER BY updated_at DESC OFFSET $1)`,
		maxEntries,
	); err != nil {
		return Conversion{}, err
	}

	if err := tx.Commit(dbctx); err != nil {
		return Conversion{}, err
	}

	if r.seen != nil {
		r.seen.Add(publicID)
	}
	return r.getByRowID(ctx, id)
}

// Get 按公开 ID 取单条记录。
func (r *Repo) Get(ctx context.Context, publicID string) (Conversion, error) {
	if r.seen != nil && !r.seen.MightExist(publicID) {
		return Conversion{}, ErrNotFound
	}

	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var c Conversion
	err := r.db.QueryRow(dbctx, `
SELECT public_id, original_url, direct_url, remark, family, created_at, updated_at
FROM conversions WHERE public_id=$1`, publicID,
	).Scan(&c.ID, &c.OriginalURL, &c.DirectURL, &c.Remark, &c.Family, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversion{}, ErrNotFound
	}
	if err != nil {
		return Conversion{}, err
	}
	return c, nil
}

// List 返回最新的历史记录，最多 maxEntries 条。
func (r *Repo) List(ctx context.Context) ([]Conversion, error) {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.Query(dbctx, `
SELECT public_id, original_url, direct_url, remark, family, created_at, updated_at
FROM conversions
WHERE public_id IS NOT NULL
ORDER BY updated_at DESC
LIMIT $1`, maxEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Conversion, 0, 32)
	for rows.Next() {
		var c Conversion
		if err := rows.Scan(&c.ID, &c.OriginalURL, &c.DirectURL, &c.Remark, &c.Family, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete 按公开 ID 删除一条记录。
// 布隆过滤器不支持删除，留下的误判只会多一次空查库，无碍正确性。
func (r *Repo) Delete(ctx context.Context, publicID string) error {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.db.Exec(dbctx, `DELETE FROM conversions WHERE public_id=$1`, publicID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) getByRowID(ctx context.Context, id int64) (Conversion, error) {
	dbctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	var c Conversion
	err := r.db.QueryRow(dbctx, `
SELECT public_id, original_url, direct_url, remark, family, created_at, updated_at
FROM conversions WHERE id=$1`, id,
	).Scan(&c.ID, &c.OriginalURL, &c.DirectURL, &c.Remark, &c.Family, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// 刚保存的行被并发裁剪顶掉，按未找到处理
		return Conversion{}, ErrNotFound
	}
	if err != nil {
		return Conversion{}, err
	}
	return c, nil
}
