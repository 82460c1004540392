package repos

import (
	"github.com/fahad04code/Bakbak-bot/internal/data/repos/activity"
	"github.com/fahad04code/Bakbak-bot/internal/data/repos/prompthistory"
	"github.com/fahad04code/Bakbak-bot/internal/data/repos/user"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type ActivityRepo = activity.ActivityRepo
type PromptHistoryRepo = prompthistory.PromptHistoryRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return activity.NewActivityRepo(db, baseLog)
}

func NewPromptHistoryRepo(db *gorm.DB, baseLog *logger.Logger) PromptHistoryRepo {
	return prompthistory.NewPromptHistoryRepo(db, baseLog)
}
