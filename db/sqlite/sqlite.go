package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("无法创建目录，请检查权限问题: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("无法打开数据库，请检查权限问题: %w", err)
	}
	// sqlite 单写者，连接数限制为 1 由连接池串行化写入
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法连接到数据库: %w", err)
	}

	sqlDB := &SQLiteDB{db: db}

	if err := sqlDB.initTable(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库创建失败: %w", err)
	}

	return sqlDB, nil
}

func (d *SQLiteDB) Close() error { return d.db.Close() }

func (d *SQLiteDB) initTable() error {
	schema := `
CREATE TABLE IF NOT EXISTS papers (
  id TEXT PRIMARY KEY,           -- arXiv ID，不带版本号
  title TEXT NOT NULL,
  summary TEXT,
  authors TEXT,
  categories TEXT,
  pdf_url TEXT,
  link_url TEXT,
  published_at DATETIME,
  updated_at DATETIME,
  is_favorite INTEGER NOT NULL DEFAULT 0,
  favorited_at DATETIME,
  saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_papers_favorite ON papers(is_favorite, favorited_at);
`
	_, err := d.db.Exec(schema)
	return err
}
