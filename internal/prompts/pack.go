package prompts

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	types "github.com/fahad04code/Bakbak-bot/internal/domain"
	"github.com/fahad04code/Bakbak-bot/internal/platform/logger"
)

const templatePackEnv = "PROMPT_TEMPLATES_YAML"

//go:embed templates.yaml
var templatePackFS embed.FS

// fallback pack used when YAML is missing or invalid
var fallbackTruthTemplates = []string{
	"What's a time you felt {emotion} about {object}? Explain.",
	"Tell us about the most {adjective} thing you did at {place}.",
	"When did you last {action} and how did it go?",
	"What's a secret about your {category} you can share?",
	"Describe a moment you felt very {emotion}.",
}

var fallbackDareTemplates = []string{
	"Record a short video of you {action} for 10-20 seconds.",
	"Record your voice {action} and upload it.",
	"Upload a video showing {object} in action.",
	"Record a voice message describing a {adjective} {category}.",
	"Make a short clip of you {action} in {place}.",
}

var fallbackTwisterTemplates = []string{
	"Say this tongue twister: '{twister}'.",
	"Record yourself saying: '{twister}' three times fast.",
	"Try this: '{twister}' in a {adjective} voice and upload it.",
}

var fallbackVocab = map[string][]string{
	"adjective": {"embarrassing", "exciting", "funny", "scary", "weird", "silly", "proud"},
	"object":    {"your phone", "your pet", "your last meal", "a book you love", "your first car"},
	"emotion":   {"jealous", "happy", "angry", "nervous", "excited", "embarrassed"},
	"action":    {"dancing", "singing", "jumping", "laughing", "shouting", "whistling"},
	"place":     {"school", "park", "kitchen", "party", "beach"},
	"category":  {"family", "friendship", "hobby", "job", "dream"},
	"twister": {
		"She sells seashells by the seashore.",
		"Peter Piper picked a peck of pickled peppers.",
		"How much wood would a woodchuck chuck?",
		"Betty Botter bought some butter.",
		"Six slippery snails slid silently.",
	},
}

var slotRe = regexp.MustCompile(`\{([a-z]+)\}`)

// Pack holds the template lists per prompt kind and the slot vocabularies
// used to fill them.
type Pack struct {
	Truth   []string
	Dare    []string
	Twister []string
	Vocab   map[string][]string
}

type yamlTemplatePack struct {
	Pack      string              `yaml:"pack"`
	Version   int                 `yaml:"version"`
	Templates map[string][]string `yaml:"templates"`
	Vocab     map[string][]string `yaml:"vocab"`
}

var packOnce sync.Once
var packCache *Pack
var packErr error

// Default returns the active template pack: the file named by
// PROMPT_TEMPLATES_YAML, else the embedded pack, else the builtin fallback.
func Default(log *logger.Logger) *Pack {
	packOnce.Do(func() {
		packCache, packErr = loadPack()
	})
	if packErr != nil {
		if log != nil {
			log.Warn("prompts: template pack load failed; using builtin", "error", packErr)
		}
		return Builtin()
	}
	return packCache
}

// Builtin is the compiled-in pack; it always validates.
func Builtin() *Pack {
	return &Pack{
		Truth:   fallbackTruthTemplates,
		Dare:    fallbackDareTemplates,
		Twister: fallbackTwisterTemplates,
		Vocab:   fallbackVocab,
	}
}

// Templates returns the template list for a prompt kind, nil for unknown
// kinds.
func (p *Pack) Templates(kind string) []string {
	switch kind {
	case types.PromptKindTruth:
		return p.Truth
	case types.PromptKindDare:
		return p.Dare
	case types.PromptKindTwister:
		return p.Twister
	default:
		return nil
	}
}

// Fill substitutes every {slot} present in tmpl using pick. Slots absent
// from the template are left alone.
func (p *Pack) Fill(tmpl string, pick func(slot string) string) string {
	return slotRe.ReplaceAllStringFunc(tmpl, func(marker string) string {
		slot := strings.Trim(marker, "{}")
		if _, ok := p.Vocab[slot]; !ok {
			return marker
		}
		return pick(slot)
	})
}

func loadPack() (*Pack, error) {
	data, err := readTemplatePack()
	if err != nil {
		return nil, err
	}

	var spec yamlTemplatePack
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	if err := validateTemplatePack(&spec); err != nil {
		return nil, err
	}

	return &Pack{
		Truth:   spec.Templates[types.PromptKindTruth],
		Dare:    spec.Templates[types.PromptKindDare],
		Twister: spec.Templates[types.PromptKindTwister],
		Vocab:   spec.Vocab,
	}, nil
}

func readTemplatePack() ([]byte, error) {
	if path := strings.TrimSpace(os.Getenv(templatePackEnv)); path != "" {
		return os.ReadFile(path)
	}
	return templatePackFS.ReadFile("templates.yaml")
}

func validateTemplatePack(spec *yamlTemplatePack) error {
	if spec == nil {
		return errors.New("missing pack")
	}
	if strings.TrimSpace(spec.Pack) != "bakbak_prompts" {
		return fmt.Errorf("unexpected pack: %s", spec.Pack)
	}
	for _, kind := range []string{types.PromptKindTruth, types.PromptKindDare, types.PromptKindTwister} {
		templates := spec.Templates[kind]
		if len(templates) == 0 {
			return fmt.Errorf("no templates for kind %s", kind)
		}
		for _, tmpl := range templates {
			if strings.TrimSpace(tmpl) == "" {
				return fmt.Errorf("kind %s: empty template", kind)
			}
			for _, m := range slotRe.FindAllStringSubmatch(tmpl, -1) {
				slot := m[1]
				if len(spec.Vocab[slot]) == 0 {
					return fmt.Errorf("kind %s: template references slot %s with empty vocabulary", kind, slot)
				}
			}
		}
	}
	for slot, options := range spec.Vocab {
		for _, opt := range options {
			if strings.TrimSpace(opt) == "" {
				return fmt.Errorf("slot %s: empty vocabulary entry", slot)
			}
		}
	}
	return nil
}
