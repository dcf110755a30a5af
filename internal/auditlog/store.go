package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	_ "modernc.org/sqlite"
)

// 文本格式: 时间 - 级别 - 消息
const textTimeLayout = "2006-01-02 15:04:05.000"

// Entry 一条控制操作记录
type Entry struct {
	Time    time.Time
	Level   zapcore.Level
	Message string
}

func (e Entry) String() string {
	return fmt.Sprintf("%s - %s - %s", e.Time.Local().Format(textTimeLayout), e.Level.CapitalString(), e.Message)
}

// Store 只追加的控制日志，底层 sqlite
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open 初始化数据库表结构
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite 单写者
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS control_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record 追加一条记录
func (s *Store) Record(ctx context.Context, level zapcore.Level, msg string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO control_log(ts, level, message) VALUES (?, ?, ?)",
		s.now().UTC().Format(time.RFC3339Nano), level.String(), msg,
	)
	if err != nil {
		return fmt.Errorf("append log record: %w", err)
	}
	return nil
}

// Entries 按写入顺序返回全部记录
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT ts, level, message FROM control_log ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query log records: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var ts, level, msg string
		if err := rows.Scan(&ts, &level, &msg); err != nil {
			return nil, err
		}
		e := Entry{Message: msg}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Time = t
		}
		if err := e.Level.UnmarshalText([]byte(level)); err != nil {
			e.Level = zapcore.InfoLevel
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Text 累积的日志文本，空库返回 ""
func (s *Store) Text(ctx context.Context) (string, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// Export 把日志文本写到 path (先写临时文件再 rename)
func (s *Store) Export(ctx context.Context, path string) error {
	text, err := s.Text(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export log: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fmt.Errorf("export log: %w", err)
	}
	return os.Rename(tmp, path)
}
