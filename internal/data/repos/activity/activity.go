package activity

import (
	"context"

	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"gorm.io/gorm"
)

type ActivityRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Activity) ([]*types.Activity, error)
	ListByPhone(ctx context.Context, tx *gorm.DB, phone string) ([]*types.ActivityWithUser, error)
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ActivityWithUser, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	repoLog := baseLog.With("repo", "ActivityRepo")
	return &activityRepo{db: db, log: repoLog}
}

func (ar *activityRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Activity) ([]*types.Activity, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if len(rows) == 0 {
		return []*types.Activity{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// Listing joins the registered user for the display name, newest first.
func (ar *activityRepo) ListByPhone(ctx context.Context, tx *gorm.DB, phone string) ([]*types.ActivityWithUser, error) {
	return ar.list(ctx, tx, phone)
}

func (ar *activityRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.ActivityWithUser, error) {
	return ar.list(ctx, tx, "")
}

func (ar *activityRepo) list(ctx context.Context, tx *gorm.DB, phone string) ([]*types.ActivityWithUser, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	q := transaction.WithContext(ctx).
		Table("activities").
		Select("activities.*, users.name AS name").
		Joins("JOIN users ON users.phone = activities.phone").
		Order("activities.timestamp DESC").
		Order("activities.id DESC")
	if phone != "" {
		q = q.Where("activities.phone = ?", phone)
	}

	var rows []*types.ActivityWithUser
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
