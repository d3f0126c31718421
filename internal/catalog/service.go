package catalog

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Shomirsaidov/chifir-food-ordering/internal/domain"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	repo  Repository
	cache MenuCache
	sfg   singleflight.Group // Prevents cache stampede on the menu key
}

func NewService(repo Repository, cache MenuCache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// GetMenu returns the browsable menu, cache-first. Cache errors are logged
// and the request falls through to the repository.
func (s *Service) GetMenu(ctx context.Context) (*Menu, error) {
	v, err, _ := s.sfg.Do(menuCacheKey, func() (interface{}, error) {
		menu, err := s.cache.Get(ctx)
		if err == nil {
			return menu, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("menu cache get error: %v", err)
		}

		categories, err := s.repo.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		items, err := s.repo.ListItems(ctx, true)
		if err != nil {
			return nil, err
		}

		menu = &Menu{Categories: categories, Items: items}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := s.cache.Set(ctx, menu); err != nil {
				log.Printf("menu cache set error: %v", err)
			}
		}()

		return menu, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*Menu), nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	return s.repo.GetItem(ctx, id)
}

// ListAllItems includes inactive items, for the admin panel.
func (s *Service) ListAllItems(ctx context.Context) ([]*domain.MenuItem, error) {
	return s.repo.ListItems(ctx, false)
}

func (s *Service) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, c *domain.Category) error {
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) UpdateCategory(ctx context.Context, c *domain.Category) error {
	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) CreateItem(ctx context.Context, item *domain.MenuItem) error {
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) UpdateItem(ctx context.Context, item *domain.MenuItem) error {
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("menu cache invalidate error: %v", err)
	}
}
