package locale_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gbg-hll/watchdog/internal/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *locale.Store {
	t.Helper()

	return locale.NewStoreFromMap(map[string]map[string]string{
		"en": {
			"punish_confirmed": "The player has been punished.",
			"log_kick":         "%s kicked %s. Reason: %s",
			"english_only":     "only in english",
		},
		"de": {
			"punish_confirmed": "Der Spieler wurde bestraft.",
			"log_kick":         "%s hat %s gekickt. Grund: %s",
		},
	}, zap.NewNop())
}

func TestLookup(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	value, ok := store.Lookup("de", "punish_confirmed")
	assert.True(t, ok)
	assert.Equal(t, "Der Spieler wurde bestraft.", value)

	_, ok = store.Lookup("de", "english_only")
	assert.False(t, ok)

	_, ok = store.Lookup("fr", "punish_confirmed")
	assert.False(t, ok)

	_, ok = store.Lookup("en", "missing_key")
	assert.False(t, ok)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	assert.Equal(t, "Der Spieler wurde bestraft.", store.Translate("de", "punish_confirmed"))
	assert.Equal(t, "Mod hat Player gekickt. Grund: toxic",
		store.Translate("de", "log_kick", "Mod", "Player", "toxic"))

	// Missing in de falls back to en
	assert.Equal(t, "only in english", store.Translate("de", "english_only"))

	// Missing everywhere falls back to the key
	assert.Equal(t, "missing_key", store.Translate("de", "missing_key"))
}

func TestNewStoreLoadsFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"),
		[]byte(`{"greeting":"hello %s"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "de.json"),
		[]byte(`{"greeting":"hallo %s"}`), 0o644))

	store, err := locale.NewStore(dir, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "hallo Welt", store.Translate("de", "greeting", "Welt"))
	assert.Equal(t, "hello world", store.Translate("en", "greeting", "world"))
}

func TestNewStoreEmptyDir(t *testing.T) {
	t.Parallel()

	_, err := locale.NewStore(t.TempDir(), zap.NewNop())
	require.ErrorIs(t, err, locale.ErrNoCatalogues)
}

func TestShippedCatalogues(t *testing.T) {
	t.Parallel()

	store, err := locale.NewStore(filepath.Join("..", "..", "config", "locales"), zap.NewNop())
	require.NoError(t, err)

	// Every key in the German catalogue must exist in English and vice versa.
	for _, pair := range [][2]string{{"de", "en"}, {"en", "de"}} {
		for _, key := range []string{
			"punish_confirmed", "log_tempban", "player_kicked_successfully",
			"error_action", "logbook", "ai_apply_recommendation_button",
		} {
			_, ok := store.Lookup(pair[0], key)
			assert.True(t, ok, "missing %s in %s", key, pair[0])
		}
	}
}
