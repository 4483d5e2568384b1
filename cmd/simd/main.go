package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/persistence/indexdb"
	persistlog "github.com/brentyates/greenkeeper-simulator-sub005/internal/persistence/log"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/persistence/snapshot"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/catalogs"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/session"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/tuning"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		sessionID  = flag.String("session", "session_1", "session id")
		seed       = flag.Int64("seed", 1337, "course seed (used only when starting a fresh session)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (tick rows + snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[simd] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	sessionDir := filepath.Join(*dataDir, "sessions", *sessionID)
	_ = os.MkdirAll(sessionDir, 0o755)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = latestSnapshot(sessionDir)
	}

	tune, tuneErr := tuning.Load(tp)
	if tuneErr != nil {
		if snapshotToLoad == "" {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
		// Resume fallback: the snapshot carries the effective parameters.
		if os.IsNotExist(tuneErr) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", tuneErr)
		}
	}

	cfg := session.Config{
		ID:                    *sessionID,
		Seed:                  *seed,
		TickInterval:          time.Duration(tune.TickIntervalMs) * time.Millisecond,
		MinutesPerTick:        tune.MinutesPerTick,
		SnapshotEveryTicks:    tune.SnapshotEveryTicks,
		StartingBudget:        tune.StartingBudget,
		ResearchPointsPerHour: tune.ResearchPointsPerHour,
		CourseWidth:           tune.Course.Width,
		CourseHeight:          tune.Course.Height,
		BucketSize:            tune.Course.BucketSize,
		StationX:              tune.Course.StationX,
		StationZ:              tune.Course.StationZ,
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(sessionDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index db: upsert catalogs: %v", err)
		}
	}

	var sess *session.Session
	if snapshotToLoad != "" {
		snap, err := snapshot.Read(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if snap.Header.SessionID != "" && snap.Header.SessionID != *sessionID {
			logger.Fatalf("snapshot session id mismatch: flag=%s snap=%s", *sessionID, snap.Header.SessionID)
		}
		sess, err = session.FromSnapshot(snap, cfg, cats)
		if err != nil {
			logger.Fatalf("restore session: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), sess.CurrentTick())
	} else {
		sess, err = session.New(cfg, cats)
		if err != nil {
			logger.Fatalf("session: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(sessionDir)
	defer tickLog.Close()
	sess.SetTickLogger(multiTickLogger{a: tickLog, b: idx})

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	sess.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(sessionDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
				if err := snapshot.Write(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
				}
			}
		}
	}()

	go func() {
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("session stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		m := sess.Metrics()

		fmt.Fprintf(rw, "# HELP greenkeeper_session_tick Current session tick.\n")
		fmt.Fprintf(rw, "# TYPE greenkeeper_session_tick gauge\n")
		fmt.Fprintf(rw, "greenkeeper_session_tick{session=%q} %d\n", *sessionID, m.Tick)

		fmt.Fprintf(rw, "# HELP greenkeeper_session_budget Remaining budget.\n")
		fmt.Fprintf(rw, "# TYPE greenkeeper_session_budget gauge\n")
		fmt.Fprintf(rw, "greenkeeper_session_budget{session=%q} %.2f\n", *sessionID, m.Budget)

		fmt.Fprintf(rw, "# HELP greenkeeper_session_research_points Accrued research points.\n")
		fmt.Fprintf(rw, "# TYPE greenkeeper_session_research_points gauge\n")
		fmt.Fprintf(rw, "greenkeeper_session_research_points{session=%q} %.2f\n", *sessionID, m.ResearchPoints)

		fmt.Fprintf(rw, "# HELP greenkeeper_session_operating_cost Operating cost of the last tick.\n")
		fmt.Fprintf(rw, "# TYPE greenkeeper_session_operating_cost gauge\n")
		fmt.Fprintf(rw, "greenkeeper_session_operating_cost{session=%q} %.4f\n", *sessionID, m.OperatingCost)

		fmt.Fprintf(rw, "# HELP greenkeeper_fleet_units Fleet census by status.\n")
		fmt.Fprintf(rw, "# TYPE greenkeeper_fleet_units gauge\n")
		fmt.Fprintf(rw, "greenkeeper_fleet_units{session=%q,status=%q} %d\n", *sessionID, "working", m.UnitsWorking)
		fmt.Fprintf(rw, "greenkeeper_fleet_units{session=%q,status=%q} %d\n", *sessionID, "idle", m.UnitsIdle)
		fmt.Fprintf(rw, "greenkeeper_fleet_units{session=%q,status=%q} %d\n", *sessionID, "charging", m.UnitsCharging)
		fmt.Fprintf(rw, "greenkeeper_fleet_units{session=%q,status=%q} %d\n", *sessionID, "broken", m.UnitsBroken)

		fmt.Fprintf(rw, "# HELP greenkeeper_session_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE greenkeeper_session_queue_depth gauge\n")
		fmt.Fprintf(rw, "greenkeeper_session_queue_depth{session=%q,queue=%q} %d\n", *sessionID, "inbox", m.QueueDepths.Inbox)
		fmt.Fprintf(rw, "greenkeeper_session_queue_depth{session=%q,queue=%q} %d\n", *sessionID, "join", m.QueueDepths.Join)
		fmt.Fprintf(rw, "greenkeeper_session_queue_depth{session=%q,queue=%q} %d\n", *sessionID, "leave", m.QueueDepths.Leave)
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(sess, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

// multiTickLogger fans tick entries out to the JSONL log and the optional
// sqlite index.
type multiTickLogger struct {
	a *persistlog.TickLogger
	b *indexdb.SQLiteIndex
}

func (m multiTickLogger) WriteTick(e session.TickLogEntry) error {
	err := m.a.WriteTick(e)
	_ = m.b.WriteTick(e)
	return err
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func latestSnapshot(sessionDir string) string {
	dir := filepath.Join(sessionDir, "snapshots")
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestTick uint64
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		base := strings.TrimSuffix(name, ".snap.zst")
		tick, err := strconv.ParseUint(base, 10, 64)
		if err != nil {
			continue
		}
		if best == "" || tick >= bestTick {
			best = filepath.Join(dir, name)
			bestTick = tick
		}
	}
	return best
}
