package db

import (
	"errors"
	"fmt"

	"ArxivBrowser/internal/models"
)

// ErrNotFound 论文不在库中
var ErrNotFound = errors.New("paper not found")

// PaperStorage 论文的持久化存储，实现需要自行串行化写入
type PaperStorage interface {
	// Upsert 按 ID 写入论文元数据，不修改已有的收藏状态
	Upsert(paper *models.Paper) error

	// SaveFavorite 写入论文及其收藏状态
	SaveFavorite(paper *models.Paper) error

	// GetFavorites 所有已收藏论文，按收藏时间倒序
	GetFavorites() ([]*models.Paper, error)

	GetPaper(id string) (*models.Paper, error)

	CountPapers() (int, error)

	Close() error
}

// StorageError 持久化失败，只记录日志，不向界面透出
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
