package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/fahad04code/Bakbak-bot/internal/data/repos"
	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/platform/apperr"
	"github.com/fahad04code/Bakbak-bot/internal/platform/ctxutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/envutil"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
	"github.com/fahad04code/Bakbak-bot/internal/prompts"
)

// readableSuffixChance is the odds a freshly built prompt gets a short hex
// tag. The tag multiplies the candidate space well past the raw template
// combinations, so long-lived users keep getting prompts that read naturally.
const readableSuffixChance = 0.05

// PromptService hands out truth/dare/tongue-twister prompts. A prompt is
// recorded against the caller before it is returned, so a prompt shown once
// is burned even if the user never submits anything for it. Concurrent calls
// for the same phone are not serialized; at worst a duplicate slips through
// and the next call sees both rows.
type PromptService interface {
	Generate(ctx context.Context, phone string, kind string) (string, error)
}

type promptService struct {
	log     *logger.Logger
	history repos.PromptHistoryRepo
	pack    *prompts.Pack

	maxAttempts int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPromptService builds the generator. src may be nil, in which case a
// time-seeded source is used; tests pass a fixed seed.
func NewPromptService(log *logger.Logger, history repos.PromptHistoryRepo, pack *prompts.Pack, src rand.Source) PromptService {
	serviceLog := log.With("service", "PromptService")
	maxAttempts := envutil.GetEnvAsInt("PROMPT_MAX_ATTEMPTS", 200, serviceLog)
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &promptService{
		log:         serviceLog,
		history:     history,
		pack:        pack,
		maxAttempts: maxAttempts,
		rng:         rand.New(src),
	}
}

// NormalizePromptKind maps client-supplied kind spellings onto the canonical
// prompt kinds.
func NormalizePromptKind(raw string) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(raw))
	switch kind {
	case types.PromptKindTruth, types.PromptKindDare, types.PromptKindTwister:
		return kind, nil
	}
	return "", fmt.Errorf("%w: unknown prompt kind %q", apperr.ErrValidation, raw)
}

func (ps *promptService) Generate(ctx context.Context, phone string, kind string) (string, error) {
	ctx = ctxutil.Default(ctx)
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("%w: phone required", apperr.ErrValidation)
	}
	kind, err := NormalizePromptKind(kind)
	if err != nil {
		return "", err
	}
	templates := ps.pack.Templates(kind)
	if len(templates) == 0 {
		return "", fmt.Errorf("no templates loaded for kind %q", kind)
	}

	used, err := ps.history.UsedPrompts(ctx, nil, phone, kind)
	if err != nil {
		return "", fmt.Errorf("%w: loading prompt history: %v", apperr.ErrStorage, err)
	}

	for attempt := 0; attempt < ps.maxAttempts; attempt++ {
		candidate := ps.fillRandom(templates[ps.intn(len(templates))])
		if ps.chance(readableSuffixChance) {
			candidate = fmt.Sprintf("%s (#%s)", candidate, randomHexToken()[:5])
		}
		if _, seen := used[candidate]; seen {
			continue
		}
		if err := ps.record(ctx, phone, kind, candidate); err != nil {
			return "", err
		}
		return candidate, nil
	}

	// Every attempt collided. A full hex tag keeps the never-repeat
	// guarantee without blocking the user.
	fallback := fmt.Sprintf("%s (#%s)", ps.fillRandom(templates[ps.intn(len(templates))]), randomHexToken())
	if err := ps.record(ctx, phone, kind, fallback); err != nil {
		return "", err
	}
	ps.log.Info("Prompt pool exhausted; issued tagged prompt", "kind", kind, "phone", phone, "attempts", ps.maxAttempts)
	return fallback, nil
}

func (ps *promptService) record(ctx context.Context, phone, kind, prompt string) error {
	rows := []*types.PromptAssignment{{Phone: phone, Kind: kind, Prompt: prompt}}
	if _, err := ps.history.Create(ctx, nil, rows); err != nil {
		return fmt.Errorf("%w: recording prompt: %v", apperr.ErrStorage, err)
	}
	return nil
}

func (ps *promptService) fillRandom(tmpl string) string {
	return ps.pack.Fill(tmpl, func(slot string) string {
		options := ps.pack.Vocab[slot]
		if len(options) == 0 {
			return ""
		}
		return options[ps.intn(len(options))]
	})
}

// rand.Rand is not safe for concurrent use; every draw goes through the lock.
func (ps *promptService) intn(n int) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.rng.Intn(n)
}

func (ps *promptService) chance(p float64) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.rng.Float64() < p
}
