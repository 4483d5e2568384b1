// Package session composes the course, the fleet and the research tree
// into a single-threaded authoritative simulation loop. All state must be
// accessed only from the session loop goroutine; tests drive it through
// StepOnce.
package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/persistence/snapshot"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/protocol"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/catalogs"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/course"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/research"
)

type Config struct {
	ID   string
	Seed int64

	TickInterval   time.Duration
	MinutesPerTick float64

	SnapshotEveryTicks int

	StartingBudget        float64
	ResearchPointsPerHour float64

	CourseWidth  int
	CourseHeight int
	BucketSize   int
	StationX     float64
	StationZ     float64
}

// Command is an observer-issued fleet operation, applied at the next tick
// boundary in receive order.
type Command struct {
	Ref         string
	Op          string
	EquipmentID string
	UnitID      string
	Resp        chan protocol.ResultMsg
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan protocol.WelcomeMsg
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick          uint64   `json:"tick"`
	OperatingCost float64  `json:"operating_cost"`
	Effects       int      `json:"effects"`
	Commands      []string `json:"commands,omitempty"`
	Digest        string   `json:"digest"`
}

type Session struct {
	cfg  Config
	cats *catalogs.Catalogs

	course     *course.Course
	fleetState fleet.State
	tree       *research.Tree
	budget     float64
	tick       uint64
	rng        *rand.Rand

	lastCost    float64
	lastEffects int
	metrics     atomic.Value // SessionMetrics

	inbox chan Command
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	observers map[string]chan []byte

	// Optional sinks (may be nil).
	tickLogger   TickLogger
	snapshotSink chan<- snapshot.SnapshotV1
}

func New(cfg Config, cats *catalogs.Catalogs) (*Session, error) {
	if cfg.MinutesPerTick <= 0 {
		return nil, fmt.Errorf("session: minutes per tick must be positive")
	}
	if cfg.CourseWidth <= 0 || cfg.CourseHeight <= 0 {
		return nil, fmt.Errorf("session: course dimensions must be positive")
	}
	crs := course.Generate(course.Config{
		Width:      cfg.CourseWidth,
		Height:     cfg.CourseHeight,
		Seed:       cfg.Seed,
		BucketSize: cfg.BucketSize,
		StationX:   cfg.StationX,
		StationZ:   cfg.StationZ,
	})
	return &Session{
		cfg:        cfg,
		cats:       cats,
		course:     crs,
		fleetState: fleet.NewState(cfg.StationX, cfg.StationZ),
		tree:       research.New(cats),
		budget:     cfg.StartingBudget,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		inbox:      make(chan Command, 64),
		join:       make(chan JoinRequest, 8),
		leave:      make(chan string, 8),
		stop:       make(chan struct{}),
		observers:  map[string]chan []byte{},
	}, nil
}

func (s *Session) Inbox() chan<- Command         { return s.inbox }
func (s *Session) Join() chan<- JoinRequest      { return s.join }
func (s *Session) Leave() chan<- string          { return s.leave }
func (s *Session) SetTickLogger(l TickLogger)    { s.tickLogger = l }
func (s *Session) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { s.snapshotSink = ch }

func (s *Session) CurrentTick() uint64 { return s.tick }
func (s *Session) Budget() float64     { return s.budget }
func (s *Session) Fleet() fleet.State  { return s.fleetState }

func (s *Session) Stop() { close(s.stop) }

// Run drives the session at the configured wall-clock rate until the
// context is canceled or Stop is called.
func (s *Session) Run(ctx context.Context) error {
	interval := s.cfg.TickInterval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pending []Command
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stop:
			return nil
		case req := <-s.join:
			s.handleJoin(req)
		case id := <-s.leave:
			delete(s.observers, id)
		case cmd := <-s.inbox:
			pending = append(pending, cmd)
		case <-ticker.C:
			s.StepOnce(pending)
			pending = pending[:0]
		}
	}
}

func (s *Session) handleJoin(req JoinRequest) {
	id := "O" + uuid.NewString()
	if req.Out != nil {
		s.observers[id] = req.Out
	}
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		ObserverID:      id,
		SessionID:       s.cfg.ID,
		Params: protocol.SessionParams{
			MinutesPerTick: s.cfg.MinutesPerTick,
			CourseWidth:    s.cfg.CourseWidth,
			CourseHeight:   s.cfg.CourseHeight,
			Seed:           s.cfg.Seed,
			StationX:       s.cfg.StationX,
			StationZ:       s.cfg.StationZ,
		},
		Catalogs: protocol.CatalogDigests{
			Equipment: s.cats.Equipment.Digest,
			Research:  s.cats.Research.Digest,
		},
	}
	if req.Resp != nil {
		req.Resp <- welcome
	}
}

// sendLatest drops the oldest frame when an observer cannot keep up, so a
// slow reader never stalls the loop.
func sendLatest(ch chan []byte, b []byte) {
	for {
		select {
		case ch <- b:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
