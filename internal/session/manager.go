package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playmatatu/fairway/internal/golf"
	"github.com/playmatatu/fairway/internal/logger"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned for unknown or expired bag sessions.
var ErrNotFound = errors.New("bag session not found")

// PathSampleEvery is the flight sampling stride used for shots played in a session.
const PathSampleEvery = 10

// BagSession is one player's bag with its club cursor.
type BagSession struct {
	ID           string
	Bag          *golf.Bag
	Shots        int
	CreatedAt    time.Time
	LastActivity time.Time
	closed       bool
	mu           sync.Mutex
}

// State is the serializable view of a session, as returned to clients and
// persisted to Redis.
type State struct {
	ID           string      `json:"id"`
	Clubs        []golf.Club `json:"clubs"`
	Current      int         `json:"current"`
	Club         golf.Club   `json:"club"`
	Shots        int         `json:"shots"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActivity time.Time   `json:"last_activity"`
}

// ShotResult is a shot played with the club in hand.
type ShotResult struct {
	State      State           `json:"state"`
	Club       golf.Club       `json:"club"`
	Seed       int64           `json:"seed"`
	Trajectory golf.Trajectory `json:"trajectory"`
}

func (s *BagSession) state() State {
	return State{
		ID:           s.ID,
		Clubs:        s.Bag.Clubs(),
		Current:      s.Bag.CurrentIndex(),
		Club:         s.Bag.Current(),
		Shots:        s.Shots,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
	}
}

// Manager keeps active bag sessions in memory and mirrors them to Redis so
// another instance can pick them up.
type Manager struct {
	sessions map[string]*BagSession
	rdb      *redis.Client
	table    *ClubTable
	env      golf.Environment
	ttl      time.Duration
	mu       sync.RWMutex
}

// NewManager creates a session manager. rdb may be nil, in which case
// sessions live in memory only.
func NewManager(rdb *redis.Client, table *ClubTable, env golf.Environment, ttl time.Duration) *Manager {
	return &Manager{
		sessions: make(map[string]*BagSession),
		rdb:      rdb,
		table:    table,
		env:      env,
		ttl:      ttl,
	}
}

func stateKey(id string) string {
	return "bag:" + id + ":state"
}

// Create opens a session. A nil clubs fills the bag from the current table.
func (m *Manager) Create(ctx context.Context, clubs []golf.Club) (State, error) {
	if clubs == nil {
		clubs = m.table.Clubs()
	}
	bag, err := golf.NewBag(clubs)
	if err != nil {
		return State{}, err
	}

	now := time.Now()
	s := &BagSession{
		ID:           uuid.NewString(),
		Bag:          bag,
		CreatedAt:    now,
		LastActivity: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	st := s.state()
	m.save(ctx, st)
	logger.WithSession(s.ID).WithField("clubs", bag.Len()).Info("bag session created")
	return st, nil
}

// Get returns a session, loading it from Redis when this instance has not seen it.
func (m *Manager) Get(ctx context.Context, id string) (State, error) {
	s, err := m.lookup(ctx, id)
	if err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(), nil
}

// Next moves the cursor to the next club, wrapping from the putter.
func (m *Manager) Next(ctx context.Context, id string) (State, error) {
	return m.update(ctx, id, func(s *BagSession) error {
		s.Bag.Increment()
		return nil
	})
}

// Prev moves the cursor to the previous club, wrapping from the driver.
func (m *Manager) Prev(ctx context.Context, id string) (State, error) {
	return m.update(ctx, id, func(s *BagSession) error {
		s.Bag.Decrement()
		return nil
	})
}

// SelectBest points the cursor at the best club for remaining meters. The
// putter is chosen when surface names a green.
func (m *Manager) SelectBest(ctx context.Context, id string, remaining float64, surface string) (State, error) {
	if remaining < 0 {
		return State{}, fmt.Errorf("%w: remaining distance must not be negative, got %v", golf.ErrInvalidArgument, remaining)
	}
	return m.update(ctx, id, func(s *BagSession) error {
		s.Bag.SelectBest(remaining, golf.OnGreen(surface))
		return nil
	})
}

// TakeShot plays the club in hand onto the named landing surface. The lie
// draw is seeded so a shot can be replayed. An empty surface lands on the
// manager's default terrain.
func (m *Manager) TakeShot(ctx context.Context, id, surface string, seed int64) (ShotResult, error) {
	terrain := golf.Simulated
	if m.env.Terrain != nil {
		terrain = *m.env.Terrain
	}
	if surface != "" {
		t, err := golf.TerrainByName(surface)
		if err != nil {
			return ShotResult{}, err
		}
		terrain = t
	}

	var res ShotResult
	st, err := m.update(ctx, id, func(s *BagSession) error {
		club := s.Bag.Current()
		rng := rand.New(rand.NewSource(seed))
		tr, err := golf.SimulateShot(club.Power, club.Loft, m.env, terrain, rng, PathSampleEvery)
		if err != nil {
			return err
		}
		s.Shots++
		res = ShotResult{Club: club, Seed: seed, Trajectory: tr}
		return nil
	})
	if err != nil {
		return ShotResult{}, err
	}
	res.State = st
	logger.WithSession(id).WithFields(logrus.Fields{
		"club":     res.Club.Type,
		"surface":  terrain.Name,
		"distance": res.Trajectory.Distance,
	}).Debug("shot played")
	return res, nil
}

// Delete closes a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	s, inMemory := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	// Hold the session while its Redis copy goes so an in-flight update
	// cannot write it back.
	if inMemory {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
	}

	if m.rdb == nil {
		if !inMemory {
			return ErrNotFound
		}
		return nil
	}
	n, err := m.rdb.Del(ctx, stateKey(id)).Result()
	if err != nil {
		return err
	}
	if n == 0 && !inMemory {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of sessions held in memory.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SweepExpired drops in-memory sessions idle for longer than maxAge. Redis
// copies expire on their own TTL.
func (m *Manager) SweepExpired(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		s.mu.Lock()
		idle := s.LastActivity.Before(cutoff)
		s.mu.Unlock()
		if idle {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	removed := 0
	m.mu.Lock()
	for _, id := range stale {
		s, ok := m.sessions[id]
		if !ok {
			continue
		}
		s.mu.Lock()
		idle := s.LastActivity.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	m.mu.Unlock()
	return removed
}

func (m *Manager) update(ctx context.Context, id string, fn func(*BagSession) error) (State, error) {
	s, err := m.lookup(ctx, id)
	if err != nil {
		return State{}, err
	}
	return m.apply(ctx, s, fn)
}

// apply runs fn on a looked-up session and persists the result. A session
// deleted since the lookup is not written back.
func (m *Manager) apply(ctx context.Context, s *BagSession, fn func(*BagSession) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return State{}, ErrNotFound
	}
	if err := fn(s); err != nil {
		return State{}, err
	}
	s.LastActivity = time.Now()
	st := s.state()
	m.save(ctx, st)
	return st, nil
}

func (m *Manager) lookup(ctx context.Context, id string) (*BagSession, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	m.sessions[id] = s
	return s, nil
}

func (m *Manager) save(ctx context.Context, st State) {
	if m.rdb == nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		logger.WithSession(st.ID).WithError(err).Error("failed to encode bag state")
		return
	}
	if err := m.rdb.SetEx(ctx, stateKey(st.ID), data, m.ttl).Err(); err != nil {
		logger.WithSession(st.ID).WithError(err).Warn("failed to persist bag state")
	}
}

func (m *Manager) load(ctx context.Context, id string) (*BagSession, error) {
	if m.rdb == nil {
		return nil, ErrNotFound
	}
	data, err := m.rdb.Get(ctx, stateKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeState([]byte(data))
}

func decodeState(data []byte) (*BagSession, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode bag state: %w", err)
	}
	bag, err := golf.RestoreBag(st.Clubs, st.Current)
	if err != nil {
		return nil, fmt.Errorf("restore bag %s: %w", st.ID, err)
	}
	return &BagSession{
		ID:           st.ID,
		Bag:          bag,
		Shots:        st.Shots,
		CreatedAt:    st.CreatedAt,
		LastActivity: time.Now(),
	}, nil
}
