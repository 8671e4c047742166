package monitoring

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spotly-app/spotly-be/internal/database"
	"github.com/spotly-app/spotly-be/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatUpdater_BadSchedule(t *testing.T) {
	t.Parallel()

	_, err := NewStatUpdater(nil, nil, "not a cron expression")
	assert.Error(t, err)
}

func TestBroadcastStats(t *testing.T) {
	t.Parallel()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	_, err = db.Exec("INSERT INTO users (id, username, email, password_hash, tokens) VALUES ('u1', 'a', 'a@example.com', 'x', 0)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO locations (id, latitude, longitude, is_available, offered_by, tokens_offered) VALUES ('l1', 1, 2, 1, 'u1', 3)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO locations (id, latitude, longitude, is_available, claimed_by, offered_by, tokens_offered) VALUES ('l2', 1, 2, 0, 'u1', 'u1', 3)")
	require.NoError(t, err)

	hub := websocket.NewHub()
	go hub.Run()
	client := websocket.NewClient(hub, nil)
	hub.Register <- client

	su, err := NewStatUpdater(db, hub, "@every 1h")
	require.NoError(t, err)

	go su.broadcastStats()

	select {
	case raw := <-client.Send:
		var msg websocket.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, "stats", msg.Action)

		var stats websocket.StatsPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &stats))
		assert.Equal(t, 1, stats.AvailableSpots)
		assert.Equal(t, 1, stats.RegisteredUsers)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a stats broadcast")
	}
}
