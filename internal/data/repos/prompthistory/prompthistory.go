package prompthistory

import (
	"context"
	"time"

	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"gorm.io/gorm"
)

type PromptHistoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.PromptAssignment) ([]*types.PromptAssignment, error)
	UsedPrompts(ctx context.Context, tx *gorm.DB, phone, kind string) (map[string]struct{}, error)
	CountForPhone(ctx context.Context, tx *gorm.DB, phone, kind string) (int64, error)
}

type promptHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptHistoryRepo(db *gorm.DB, baseLog *logger.Logger) PromptHistoryRepo {
	repoLog := baseLog.With("repo", "PromptHistoryRepo")
	return &promptHistoryRepo{db: db, log: repoLog}
}

func (pr *promptHistoryRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.PromptAssignment) ([]*types.PromptAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(rows) == 0 {
		return []*types.PromptAssignment{}, nil
	}

	now := time.Now().UTC()
	for _, row := range rows {
		if row.AssignedAt.IsZero() {
			row.AssignedAt = now
		}
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// UsedPrompts collapses the history to a set; duplicate rows fold into one
// entry.
func (pr *promptHistoryRepo) UsedPrompts(ctx context.Context, tx *gorm.DB, phone, kind string) (map[string]struct{}, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var prompts []string
	if err := transaction.WithContext(ctx).
		Model(&types.PromptAssignment{}).
		Where("phone = ? AND kind = ?", phone, kind).
		Pluck("prompt", &prompts).Error; err != nil {
		return nil, err
	}

	used := make(map[string]struct{}, len(prompts))
	for _, p := range prompts {
		used[p] = struct{}{}
	}
	return used, nil
}

func (pr *promptHistoryRepo) CountForPhone(ctx context.Context, tx *gorm.DB, phone, kind string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.PromptAssignment{}).
		Where("phone = ? AND kind = ?", phone, kind).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
