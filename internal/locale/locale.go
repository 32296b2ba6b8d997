package locale

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

var ErrNoCatalogues = errors.New("no locale files found")

// FallbackLanguage is consulted when a key is missing from the requested
// catalogue before giving up and returning the key itself.
const FallbackLanguage = "en"

// Store holds per-language message catalogues loaded from JSON files.
type Store struct {
	catalogues map[string]map[string]string
	logger     *zap.Logger
}

// NewStore loads every <lang>.json catalogue from the given directory.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale directory: %w", err)
	}

	catalogues := make(map[string]map[string]string)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var catalogue map[string]string
		if err := sonic.Unmarshal(data, &catalogue); err != nil {
			return nil, fmt.Errorf("failed to parse locale file %s: %w", entry.Name(), err)
		}

		lang := strings.TrimSuffix(entry.Name(), ".json")
		catalogues[lang] = catalogue
	}

	if len(catalogues) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCatalogues, dir)
	}

	return &Store{
		catalogues: catalogues,
		logger:     logger.Named("locale"),
	}, nil
}

// NewStoreFromMap creates a store from in-memory catalogues.
func NewStoreFromMap(catalogues map[string]map[string]string, logger *zap.Logger) *Store {
	return &Store{
		catalogues: catalogues,
		logger:     logger.Named("locale"),
	}
}

// Lookup returns the raw template for a key and whether it was found. It does
// not fall back between languages.
func (s *Store) Lookup(lang, key string) (string, bool) {
	catalogue, ok := s.catalogues[lang]
	if !ok {
		return "", false
	}

	template, ok := catalogue[key]
	if !ok || template == "" {
		return "", false
	}

	return template, true
}

// Translate resolves a key for a language and formats it with the given
// arguments. Misses log a warning and fall back to the English catalogue,
// then to the key itself.
func (s *Store) Translate(lang, key string, args ...any) string {
	template, ok := s.Lookup(lang, key)
	if !ok {
		s.logger.Warn("Translation not found",
			zap.String("lang", lang),
			zap.String("key", key))

		if template, ok = s.Lookup(FallbackLanguage, key); !ok {
			return key
		}
	}

	if len(args) == 0 {
		return template
	}

	return fmt.Sprintf(template, args...)
}
