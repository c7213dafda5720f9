package store

import (
	"context"
	"errors"

	storage "ArxivBrowser/db"
	"ArxivBrowser/internal/models"
)

// ToggleFavorite 切换收藏状态，修改后的论文同步到所有分类列表和搜索结果，并写入存储。
// 内存中找不到时回退到存储查询
func (s *Store) ToggleFavorite(ctx context.Context, id string) (models.Paper, error) {
	if err := ctx.Err(); err != nil {
		return models.Paper{}, err
	}

	s.mu.Lock()
	current := s.findLocked(id)
	s.mu.Unlock()

	if current == nil {
		current = s.lookupStored(id)
		if current == nil {
			return models.Paper{}, ErrPaperNotFound
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// 两次加锁之间可能已被其他调用修改，以内存中的最新状态为准
	if latest := s.findLocked(id); latest != nil {
		current = latest
	}

	updated := *current
	updated.SetFavorite(!current.IsFavorite, s.now())
	s.propagateLocked(&updated)

	if updated.IsFavorite {
		log.Info("已收藏: %s", id)
	} else {
		log.Info("已取消收藏: %s", id)
	}

	if s.storage != nil {
		if err := s.storage.SaveFavorite(&updated); err != nil {
			log.Warn("保存收藏状态失败 [%s]: %v", id, err)
		}
	}
	return updated, nil
}

// Paper 按 ID 查找论文，内存中没有时查询存储
func (s *Store) Paper(id string) (models.Paper, error) {
	s.mu.RLock()
	if p := s.findLocked(id); p != nil {
		out := *p
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	if stored := s.lookupStored(id); stored != nil {
		return *stored, nil
	}
	return models.Paper{}, ErrPaperNotFound
}

// RestoreFavorites 启动时从存储恢复收藏列表，不影响加载状态
func (s *Store) RestoreFavorites() error {
	if s.storage == nil {
		return nil
	}
	favorites, err := s.storage.GetFavorites()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.setFavoritesLocked(favorites)
	s.mu.Unlock()

	log.Info("从本地存储恢复了 %d 篇收藏", len(favorites))
	return nil
}

// AllPapers 所有固定分类中的论文，按 ID 去重，不含搜索结果
func (s *Store) AllPapers() []models.Paper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyPapers(s.allPapersLocked())
}

func (s *Store) allPapersLocked() []*models.Paper {
	var all []*models.Paper
	for _, c := range models.FixedCategories() {
		all = append(all, s.lists[c]...)
	}
	return models.Dedup(all)
}

// loadFavorites 刷新收藏列表。存储不可用时从内存中的分类列表推导
func (s *Store) loadFavorites() {
	if s.storage != nil {
		favorites, err := s.storage.GetFavorites()
		if err == nil {
			s.mu.Lock()
			s.setFavoritesLocked(favorites)
			s.mu.Unlock()
			log.Info("收藏列表已从存储加载，共 %d 篇", len(favorites))
			return
		}
		log.Warn("读取收藏失败，改用内存数据: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var favorites []*models.Paper
	for _, p := range s.allPapersLocked() {
		if p.IsFavorite {
			favorites = append(favorites, p)
		}
	}
	models.SortByFavoritedAt(favorites)
	s.lists[models.CategoryFavorites] = favorites
}

// setFavoritesLocked 用存储中的收藏替换收藏列表，并把同 ID 的条目同步到其他列表
func (s *Store) setFavoritesLocked(favorites []*models.Paper) {
	favorites = models.Dedup(favorites)
	models.SortByFavoritedAt(favorites)
	s.lists[models.CategoryFavorites] = favorites

	index := make(map[string]*models.Paper, len(favorites))
	for _, f := range favorites {
		index[f.ID] = f
	}
	for c, list := range s.lists {
		if c == models.CategoryFavorites {
			continue
		}
		for i, p := range list {
			if f, ok := index[p.ID]; ok {
				list[i] = f
			}
		}
	}
}

func (s *Store) findLocked(id string) *models.Paper {
	for _, list := range s.lists {
		for _, p := range list {
			if p.ID == id {
				return p
			}
		}
	}
	return nil
}

// propagateLocked 用修改后的论文替换所有列表里的同 ID 条目，并维护收藏列表
func (s *Store) propagateLocked(updated *models.Paper) {
	for c, list := range s.lists {
		if c == models.CategoryFavorites {
			continue
		}
		for i, p := range list {
			if p.ID == updated.ID {
				list[i] = updated
			}
		}
	}

	favorites := s.lists[models.CategoryFavorites]
	kept := make([]*models.Paper, 0, len(favorites)+1)
	for _, p := range favorites {
		if p.ID != updated.ID {
			kept = append(kept, p)
		}
	}
	if updated.IsFavorite {
		kept = append(kept, updated)
	}
	models.SortByFavoritedAt(kept)
	s.lists[models.CategoryFavorites] = kept
}

func (s *Store) lookupStored(id string) *models.Paper {
	if s.storage == nil {
		return nil
	}
	p, err := s.storage.GetPaper(id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn("查询论文失败 [%s]: %v", id, err)
		}
		return nil
	}
	return p
}
