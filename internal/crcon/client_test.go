package crcon_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gbg-hll/watchdog/internal/crcon"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *crcon.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return crcon.NewClient(&config.CRCON{
		BaseURL:        server.URL,
		APIToken:       "test-token",
		RequestTimeout: 5000,
	}, zap.NewNop())
}

func TestRequestURLConstruction(t *testing.T) {
	t.Parallel()

	var path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path

		_, _ = w.Write([]byte(`{"result":[],"failed":false}`))
	}))
	t.Cleanup(server.Close)

	baseURLs := []string{
		server.URL,
		server.URL + "/",
		server.URL + "/api",
		server.URL + "/api/",
	}

	for _, baseURL := range baseURLs {
		client := crcon.NewClient(&config.CRCON{
			BaseURL:        baseURL,
			APIToken:       "test-token",
			RequestTimeout: 5000,
		}, zap.NewNop())

		_, err := client.GetPlayers(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "/api/get_players", path, "base URL %q", baseURL)
	}
}

func TestMessagePlayer(t *testing.T) {
	t.Parallel()

	var captured map[string]any

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/message_player", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, sonic.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{"result":"SUCCESS","failed":false}`))
	}))

	err := client.MessagePlayer(t.Context(), "Player", "7656119", "hello")
	require.NoError(t, err)
	assert.Equal(t, "Player", captured["player_name"])
	assert.Equal(t, "7656119", captured["player_id"])
	assert.Equal(t, "hello", captured["message"])
}

func TestExecuteFailedEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":null,"failed":true,"error":"player not online"}`))
	}))

	err := client.Kick(t.Context(), "Player", "7656119", "reason")
	require.ErrorIs(t, err, crcon.ErrCommandFailed)
}

func TestExecuteFalseResult(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":false,"failed":false}`))
	}))

	err := client.Punish(t.Context(), "7656119", "Player", "reason")
	require.ErrorIs(t, err, crcon.ErrCommandFailed)
}

func TestAddBlacklistRecordExpiry(t *testing.T) {
	t.Parallel()

	var captured map[string]any

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured = nil
		require.NoError(t, sonic.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{"result":true,"failed":false}`))
	}))

	err := client.AddBlacklistRecord(t.Context(), "7656119", "reason", "2025-06-01T12:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01T12:00", captured["expires_at"])

	err = client.AddBlacklistRecord(t.Context(), "7656119", "reason", "")
	require.NoError(t, err)
	assert.NotContains(t, captured, "expires_at")
}

func TestGetPlayerIDByName(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get_players", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)

		_, _ = w.Write([]byte(`{"result":[` +
			`{"name":"Alpha","player_id":"111"},` +
			`{"name":"Bravo","player_id":"222"}],"failed":false}`))
	}))

	id, err := client.GetPlayerIDByName(t.Context(), "bravo")
	require.NoError(t, err)
	assert.Equal(t, "222", id)

	_, err = client.GetPlayerIDByName(t.Context(), "Charlie")
	require.ErrorIs(t, err, crcon.ErrPlayerNotFound)
}

func TestGetPlayerNameByIDFallsBackToID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":null,"failed":true,"error":"not found"}`))
	}))

	name := client.GetPlayerNameByID(t.Context(), "7656119")
	assert.Equal(t, "7656119", name)
}

func TestGetPlayerNameByID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7656119", r.URL.Query().Get("player_id"))

		_, _ = w.Write([]byte(`{"result":{"names":[{"name":"Alpha"}]},"failed":false}`))
	}))

	name := client.GetPlayerNameByID(t.Context(), "7656119")
	assert.Equal(t, "Alpha", name)
}

func TestGetStandardMessages(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get_standard_punishments_messages", r.URL.Path)

		_, _ = w.Write([]byte(`{"result":["Teamkilling","Toxic chat"],"failed":false}`))
	}))

	messages, err := client.GetStandardMessages(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"Teamkilling", "Toxic chat"}, messages)
}
