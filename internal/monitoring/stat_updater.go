package monitoring

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spotly-app/spotly-be/internal/websocket"
)

// StatUpdater periodically gathers marketplace and host figures and
// broadcasts them to every connected client. The cadence comes from a cron
// expression so operators can slow it down in production.
type StatUpdater struct {
	db       *sql.DB
	hub      *websocket.Hub
	schedule cron.Schedule
	done     chan bool
}

// NewStatUpdater creates a new StatUpdater. scheduleExpr is a standard cron
// expression or a descriptor like "@every 30s".
func NewStatUpdater(db *sql.DB, hub *websocket.Hub, scheduleExpr string) (*StatUpdater, error) {
	schedule, err := cron.ParseStandard(scheduleExpr)
	if err != nil {
		return nil, err
	}
	return &StatUpdater{
		db:       db,
		hub:      hub,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the periodic broadcasts.
func (su *StatUpdater) Run() {
	log.Info().Msg("Starting background stat updater...")

	// Run once immediately on start
	su.broadcastStats()

	for {
		timer := time.NewTimer(time.Until(su.schedule.Next(time.Now())))
		select {
		case <-su.done:
			timer.Stop()
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-timer.C:
			su.broadcastStats()
		}
	}
}

// Stop halts the periodic broadcasts.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// broadcastStats samples the marketplace counters and host load and pushes
// them to all connected clients.
func (su *StatUpdater) broadcastStats() {
	var stats websocket.StatsPayload

	if err := su.db.QueryRow("SELECT COUNT(1) FROM locations WHERE is_available = 1").Scan(&stats.AvailableSpots); err != nil {
		log.Error().Err(err).Msg("StatUpdater: Failed to count available spots")
		return
	}
	if err := su.db.QueryRow("SELECT COUNT(1) FROM users").Scan(&stats.RegisteredUsers); err != nil {
		log.Error().Err(err).Msg("StatUpdater: Failed to count users")
		return
	}

	// Host load is informational only; a sampling error is not worth
	// skipping the broadcast for.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		stats.HostCPUPercent = percents[0]
	} else if err != nil {
		log.Warn().Err(err).Msg("StatUpdater: Could not sample CPU usage")
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.HostMemPercent = vm.UsedPercent
	} else {
		log.Warn().Err(err).Msg("StatUpdater: Could not sample memory usage")
	}

	msg, err := websocket.NewStatsMessage(stats)
	if err != nil {
		log.Error().Err(err).Msg("StatUpdater: Failed to encode stats message")
		return
	}

	su.hub.Broadcast <- msg
	log.Debug().
		Int("available_spots", stats.AvailableSpots).
		Int("registered_users", stats.RegisteredUsers).
		Msg("StatUpdater: Broadcast marketplace stats")
}
