package testutil

import (
	"context"
	"testing"
	"time"

	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, phone, name string) *types.User {
	tb.Helper()
	u := &types.User{
		Phone:     phone,
		Name:      name,
		Age:       18,
		Gender:    "Other",
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, phone, kind string, at time.Time) *types.Activity {
	tb.Helper()
	prompt := "seed prompt"
	a := &types.Activity{
		Phone:        phone,
		ActivityType: kind,
		Prompt:       &prompt,
		CreatedAt:    at,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return a
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, phone, kind, prompt string) *types.PromptAssignment {
	tb.Helper()
	row := &types.PromptAssignment{
		Phone:      phone,
		Kind:       kind,
		Prompt:     prompt,
		AssignedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return row
}

func PtrString(v string) *string { return &v }
