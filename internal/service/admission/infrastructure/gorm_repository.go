package infrastructure

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	park "skypark/domain"
)

// GormAttractionRepository 是 AttractionRepository 的 GORM 实现。
type GormAttractionRepository struct {
	db *gorm.DB
}

func NewGormAttractionRepository(db *gorm.DB) *GormAttractionRepository {
	return &GormAttractionRepository{db: db}
}

func (r *GormAttractionRepository) FindByName(ctx context.Context, name string) (*park.Attraction, error) {
	var model AttractionModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainAttraction(&model), nil
}

func (r *GormAttractionRepository) ListAll(ctx context.Context) ([]*park.Attraction, error) {
	var models []AttractionModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*park.Attraction, 0, len(models))
	for i := range models {
		out = append(out, ToDomainAttraction(&models[i]))
	}
	return out, nil
}

// GormVisitorRepository 是 VisitorRepository 的 GORM 实现。
type GormVisitorRepository struct {
	db *gorm.DB
}

func NewGormVisitorRepository(db *gorm.DB) *GormVisitorRepository {
	return &GormVisitorRepository{db: db}
}

func (r *GormVisitorRepository) FindByID(ctx context.Context, id string) (*park.Visitor, error) {
	var model VisitorModel
	err := r.db.WithContext(ctx).Where("visitor_id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainVisitor(&model), nil
}

func (r *GormVisitorRepository) FindByTagCode(ctx context.Context, tagCode string) (*park.Visitor, error) {
	var model VisitorModel
	err := r.db.WithContext(ctx).Where("tag_code = ?", tagCode).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainVisitor(&model), nil
}

// GormTicketRepository 是 TicketRepository 的 GORM 实现。
type GormTicketRepository struct {
	db *gorm.DB
}

func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

func (r *GormTicketRepository) FindByQRCode(ctx context.Context, qrCode string) (*park.Ticket, error) {
	var model TicketModel
	err := r.db.WithContext(ctx).Where("qr_code = ?", qrCode).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainTicket(&model), nil
}

func (r *GormTicketRepository) ListByVisitorAndDate(ctx context.Context, visitorID string, day time.Time) ([]*park.Ticket, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var models []TicketModel
	err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND visit_date >= ? AND visit_date < ?", visitorID, dayStart, dayEnd).
		Order("purchased_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*park.Ticket, 0, len(models))
	for i := range models {
		out = append(out, ToDomainTicket(&models[i]))
	}
	return out, nil
}

// GormEventRepository 是 EventRepository 的 GORM 实现。
type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) FindByName(ctx context.Context, name string) (*park.Event, error) {
	var model EventModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainEvent(&model), nil
}

// GormVisitRepository 是 VisitRepository 的 GORM 实现。
type GormVisitRepository struct {
	db *gorm.DB
}

func NewGormVisitRepository(db *gorm.DB) *GormVisitRepository {
	return &GormVisitRepository{db: db}
}

func (r *GormVisitRepository) Save(ctx context.Context, visit *park.Visit) error {
	return r.db.WithContext(ctx).Create(FromDomainVisit(visit)).Error
}

func (r *GormVisitRepository) Update(ctx context.Context, visit *park.Visit) error {
	return r.db.WithContext(ctx).
		Model(&VisitModel{}).
		Where("visit_id = ?", visit.ID).
		Updates(map[string]interface{}{
			"exit_at":       visit.ExitAt,
			"active":        visit.Active,
			"points":        visit.Points,
			"strategy_name": visit.StrategyName,
		}).Error
}

func (r *GormVisitRepository) FindActive(ctx context.Context, visitorID, attractionName string) (*park.Visit, error) {
	var model VisitModel
	err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND attraction_name = ? AND active = ?", visitorID, attractionName, true).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainVisit(&model), nil
}

func (r *GormVisitRepository) FindAnyActive(ctx context.Context, visitorID string) (*park.Visit, error) {
	var model VisitModel
	err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND active = ?", visitorID, true).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return ToDomainVisit(&model), nil
}

func (r *GormVisitRepository) ListByVisitorSince(ctx context.Context, visitorID string, since time.Time) ([]*park.Visit, error) {
	var models []VisitModel
	err := r.db.WithContext(ctx).
		Where("visitor_id = ? AND entry_at >= ?", visitorID, since).
		Order("entry_at").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]*park.Visit, 0, len(models))
	for i := range models {
		out = append(out, ToDomainVisit(&models[i]))
	}
	return out, nil
}
