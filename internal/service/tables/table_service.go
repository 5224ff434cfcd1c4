package tables

import (
	"context"

	"github.com/Domenick1991/tablebooking/internal/domain"
	"github.com/Domenick1991/tablebooking/internal/repository"
	"go.uber.org/zap"
)

type TableUseCase interface {
	List(ctx context.Context) ([]domain.Table, error)
}

type Cache interface {
	GetTables(ctx context.Context) ([]domain.Table, error)
	SetTables(ctx context.Context, tables []domain.Table) error
}

// TableService serves table metadata, read through a short-lived cache.
// Table management happens elsewhere, so the cache is only invalidated by TTL.
type TableService struct {
	repo  repository.TableRepository
	cache Cache
	log   *zap.Logger
}

func NewTableService(repo repository.TableRepository, cache Cache, log *zap.Logger) *TableService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TableService{repo: repo, cache: cache, log: log}
}

func (s *TableService) List(ctx context.Context) ([]domain.Table, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTables(ctx)
		if err != nil {
			s.log.Warn("read tables cache", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	tables, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetTables(ctx, tables); err != nil {
			s.log.Warn("write tables cache", zap.Error(err))
		}
	}
	return tables, nil
}

var _ TableUseCase = (*TableService)(nil)
