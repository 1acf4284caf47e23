package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"skypark/internal/service/scoring/domain"
)

// GormStrategyRepository 是 StrategyRepository 的 GORM 实现。
type GormStrategyRepository struct {
	db *gorm.DB
}

func NewGormStrategyRepository(db *gorm.DB) *GormStrategyRepository {
	return &GormStrategyRepository{db: db}
}

func (r *GormStrategyRepository) Save(ctx context.Context, strategy *domain.ScoringStrategy) error {
	return r.db.WithContext(ctx).Create(FromDomainStrategy(strategy)).Error
}

func (r *GormStrategyRepository) Update(ctx context.Context, strategy *domain.ScoringStrategy) error {
	return r.db.WithContext(ctx).
		Model(&StrategyModel{}).
		Where("strategy_id = ?", strategy.ID).
		Updates(map[string]interface{}{
			"description": strategy.Description,
			"active":      strategy.Active,
			"raw_config":  strategy.RawConfig,
		}).Error
}

func (r *GormStrategyRepository) Delete(ctx context.Context, name string) error {
	return r.db.WithContext(ctx).Where("name = ?", name).Delete(&StrategyModel{}).Error
}

func (r *GormStrategyRepository) FindByName(ctx context.Context, name string) (*domain.ScoringStrategy, error) {
	var model StrategyModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainStrategy(&model), nil
}

func (r *GormStrategyRepository) FindActive(ctx context.Context) (*domain.ScoringStrategy, error) {
	var model StrategyModel
	err := r.db.WithContext(ctx).Where("active = ?", true).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainStrategy(&model), nil
}

func (r *GormStrategyRepository) ListAll(ctx context.Context) ([]*domain.ScoringStrategy, error) {
	var models []StrategyModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.ScoringStrategy, 0, len(models))
	for i := range models {
		out = append(out, ToDomainStrategy(&models[i]))
	}
	return out, nil
}
