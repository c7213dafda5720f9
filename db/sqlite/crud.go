package db

import (
	"database/sql"
	"errors"
	"time"

	storage "ArxivBrowser/db"
	"ArxivBrowser/internal/models"
)

const paperColumns = `id, title, summary, authors, categories, pdf_url, link_url,
	published_at, updated_at, is_favorite, favorited_at`

// Upsert 冲突时只刷新元数据，收藏状态保持不变
func (s *SQLiteDB) Upsert(p *models.Paper) error {
	query := `
	INSERT INTO papers (` + paperColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, NULL)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		summary = excluded.summary,
		authors = excluded.authors,
		categories = excluded.categories,
		pdf_url = excluded.pdf_url,
		link_url = excluded.link_url,
		published_at = excluded.published_at,
		updated_at = excluded.updated_at,
		saved_at = CURRENT_TIMESTAMP
	`
	_, err := s.db.Exec(query,
		p.ID, p.Title, p.Summary, p.Authors, p.Categories, p.PDFURL, p.LinkURL,
		p.PublishedAt.UTC(), nullTime(p.UpdatedAt),
	)
	return storage.Wrap("upsert", err)
}

// SaveFavorite 写入整条记录，包括收藏状态
func (s *SQLiteDB) SaveFavorite(p *models.Paper) error {
	query := `
	INSERT INTO papers (` + paperColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		summary = excluded.summary,
		authors = excluded.authors,
		categories = excluded.categories,
		pdf_url = excluded.pdf_url,
		link_url = excluded.link_url,
		published_at = excluded.published_at,
		updated_at = excluded.updated_at,
		is_favorite = excluded.is_favorite,
		favorited_at = excluded.favorited_at,
		saved_at = CURRENT_TIMESTAMP
	`
	_, err := s.db.Exec(query,
		p.ID, p.Title, p.Summary, p.Authors, p.Categories, p.PDFURL, p.LinkURL,
		p.PublishedAt.UTC(), nullTime(p.UpdatedAt), p.IsFavorite, nullTime(p.FavoritedAt),
	)
	return storage.Wrap("save favorite", err)
}

// GetFavorites sqlite 中 NULL 最小，倒序时没有收藏时间的排在最后
func (s *SQLiteDB) GetFavorites() ([]*models.Paper, error) {
	rows, err := s.db.Query(`SELECT ` + paperColumns + ` FROM papers
	WHERE is_favorite = 1
	ORDER BY favorited_at DESC`)
	if err != nil {
		return nil, storage.Wrap("get favorites", err)
	}
	defer rows.Close()

	papers, err := scanPapers(rows)
	return papers, storage.Wrap("get favorites", err)
}

func (s *SQLiteDB) GetPaper(id string) (*models.Paper, error) {
	rows, err := s.db.Query(`SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)
	if err != nil {
		return nil, storage.Wrap("get paper", err)
	}
	defer rows.Close()

	papers, err := scanPapers(rows)
	if err != nil {
		return nil, storage.Wrap("get paper", err)
	}
	if len(papers) == 0 {
		return nil, storage.ErrNotFound
	}
	return papers[0], nil
}

func (s *SQLiteDB) CountPapers() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM papers`).Scan(&n)
	return n, storage.Wrap("count", err)
}

func scanPapers(rows *sql.Rows) ([]*models.Paper, error) {
	var papers []*models.Paper

	for rows.Next() {
		var p models.Paper
		var summary, authors, categories, pdfURL, linkURL sql.NullString
		var published, updated, favoritedAt sql.NullTime

		err := rows.Scan(
			&p.ID, &p.Title, &summary, &authors, &categories, &pdfURL, &linkURL,
			&published, &updated, &p.IsFavorite, &favoritedAt,
		)
		if err != nil {
			return nil, err
		}

		p.Summary = summary.String
		p.Authors = authors.String
		p.Categories = categories.String
		p.PDFURL = pdfURL.String
		p.LinkURL = linkURL.String
		if published.Valid {
			p.PublishedAt = published.Time
		}
		p.UpdatedAt = timePtr(updated)
		p.FavoritedAt = timePtr(favoritedAt)

		papers = append(papers, &p)
	}

	return papers, rows.Err()
}

// 统一存 UTC，保证按字符串排序与时间顺序一致
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

var _ storage.PaperStorage = (*SQLiteDB)(nil)

// IsNotFound 供调用方判断记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
