package ws

import (
	"context"
	"encoding/json"

	"github.com/playmatatu/fairway/internal/logger"
	cache "github.com/playmatatu/fairway/internal/redis"
	"github.com/playmatatu/fairway/internal/session"
	"github.com/redis/go-redis/v9"
)

// StartCalibrationSubscriber relays calibration events to every connected
// client. Completed runs also replace table, so instances that did not run
// the calibration serve the new clubs too.
func StartCalibrationSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub, table *session.ClubTable) {
	log := logger.WithComponent("ws")
	if rdb == nil {
		log.Warn("redis client not set; calibration subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, cache.CalibrationEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.WithField("channel", cache.CalibrationEventsChannel).Info("calibration subscriber started")
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handleCalibrationEvent([]byte(msg.Payload), hub, table)
			}
		}
	}()
}

func handleCalibrationEvent(payload []byte, hub *Hub, table *session.ClubTable) {
	log := logger.WithComponent("ws")
	var ev cache.CalibrationEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.WithError(err).Warn("invalid calibration event payload")
		return
	}
	log.WithField("type", ev.Type).WithField("run_id", ev.RunID).Info("calibration event received")

	if ev.Type == cache.EventCompleted && table != nil && len(ev.Clubs) > 0 && table.RunID() != ev.RunID {
		table.Set(ev.Clubs, ev.RunID)
	}
	hub.broadcastRaw(payload)
}
