package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/playmatatu/fairway/internal/golf"
	"github.com/redis/go-redis/v9"
)

const (
	// CalibratedClubsKey holds the latest calibrated club table as JSON.
	CalibratedClubsKey = "clubs:calibrated"
	// CalibrationEventsChannel carries calibration lifecycle events.
	CalibrationEventsChannel = "calibration_events"
)

// ErrNoCalibration is returned when no calibrated table has been cached yet.
var ErrNoCalibration = errors.New("no calibrated clubs cached")

// Connect establishes a connection to Redis
func Connect(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

type cachedClubs struct {
	RunID     string      `json:"run_id"`
	Clubs     []golf.Club `json:"clubs"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SaveCalibratedClubs caches the calibrated table for other server instances.
func SaveCalibratedClubs(ctx context.Context, rdb *redis.Client, runID string, clubs []golf.Club) error {
	if rdb == nil {
		return nil
	}
	data, err := json.Marshal(cachedClubs{RunID: runID, Clubs: clubs, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	return rdb.Set(ctx, CalibratedClubsKey, data, 0).Err()
}

// LoadCalibratedClubs returns the cached calibrated table and the run it came from.
func LoadCalibratedClubs(ctx context.Context, rdb *redis.Client) ([]golf.Club, string, error) {
	if rdb == nil {
		return nil, "", ErrNoCalibration
	}
	data, err := rdb.Get(ctx, CalibratedClubsKey).Result()
	if err == redis.Nil {
		return nil, "", ErrNoCalibration
	}
	if err != nil {
		return nil, "", err
	}
	var cached cachedClubs
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, "", fmt.Errorf("decode cached clubs: %w", err)
	}
	if len(cached.Clubs) == 0 {
		return nil, "", ErrNoCalibration
	}
	return cached.Clubs, cached.RunID, nil
}

// Event types published on CalibrationEventsChannel.
const (
	EventStarted   = "calibration_started"
	EventCompleted = "calibration_completed"
	EventFailed    = "calibration_failed"
)

// CalibrationEvent is published when a calibration run starts or finishes.
type CalibrationEvent struct {
	Type   string      `json:"type"`
	RunID  string      `json:"run_id"`
	Clubs  []golf.Club `json:"clubs,omitempty"`
	Error  string      `json:"error,omitempty"`
	SentAt time.Time   `json:"sent_at"`
}

// PublishCalibrationEvent fans an event out to every subscribed instance.
func PublishCalibrationEvent(ctx context.Context, rdb *redis.Client, ev CalibrationEvent) error {
	if rdb == nil {
		return nil
	}
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return rdb.Publish(ctx, CalibrationEventsChannel, data).Err()
}
