package user

import (
	"context"

	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
	GetByPhones(ctx context.Context, tx *gorm.DB, phones []string) ([]*types.User, error)
	PhoneExists(ctx context.Context, tx *gorm.DB, phone string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

// Upsert replaces the whole row for an existing phone, created_at and
// is_admin included.
func (ur *userRepo) Upsert(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if len(users) == 0 {
		return []*types.User{}, nil
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			UpdateAll: true,
		}).
		Create(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (ur *userRepo) GetByPhones(ctx context.Context, tx *gorm.DB, phones []string) ([]*types.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var results []*types.User
	if len(phones) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("phone IN ?", phones).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) PhoneExists(ctx context.Context, tx *gorm.DB, phone string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.User{}).
		Where("phone = ?", phone).
		Count(&count).Error; err != nil {
		return false, err
	}
	exists := count > 0
	return exists, nil
}
