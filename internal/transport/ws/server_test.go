package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/protocol"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/catalogs"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/fleet"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/session"
)

func startTestServer(t *testing.T) (*httptest.Server, *session.Session) {
	t.Helper()
	cats := &catalogs.Catalogs{}
	cats.Equipment.Order = []string{"mower_riding"}
	cats.Equipment.Defs = map[string]catalogs.EquipmentDef{
		"mower_riding": {ID: "mower_riding", Name: "Riding Mower", Stats: fleet.EquipmentStats{
			Autonomous: true, Cost: 4000, Speed: 1, FuelCapacity: 60, FuelConsumption: 2, OperatingCost: 6,
		}},
	}
	cats.Equipment.Digest = "eqtest"
	cats.Research.Digest = "rstest"

	sess, err := session.New(session.Config{
		ID:             "S-ws",
		Seed:           3,
		TickInterval:   10 * time.Millisecond,
		MinutesPerTick: 1,
		StartingBudget: 10000,
		CourseWidth:    32,
		CourseHeight:   32,
		BucketSize:     8,
		StationX:       16,
		StationZ:       16,
	}, cats)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = sess.Run(ctx) }()
	t.Cleanup(cancel)

	srv := NewServer(sess, log.New(os.Stderr, "[ws-test] ", log.LstdFlags))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, sess
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readTyped(t *testing.T, conn *websocket.Conn, wantType string, timeout time.Duration) []byte {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type == wantType {
			return msg
		}
	}
	t.Fatalf("no %s frame within %v", wantType, timeout)
	return nil
}

func TestWS_HandshakeAndStateFrames(t *testing.T) {
	ts, _ := startTestServer(t)
	conn := dial(t, ts)

	hello := protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ObserverName: "greenskeeper"}
	if err := conn.WriteJSON(hello); err != nil {
		t.Fatal(err)
	}

	raw := readTyped(t, conn, protocol.TypeWelcome, 2*time.Second)
	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatal(err)
	}
	if welcome.ObserverID == "" || welcome.SessionID != "S-ws" {
		t.Fatalf("welcome = %+v", welcome)
	}
	if welcome.Catalogs.Equipment != "eqtest" {
		t.Fatalf("equipment digest = %q", welcome.Catalogs.Equipment)
	}

	raw = readTyped(t, conn, protocol.TypeState, 2*time.Second)
	var state protocol.StateMsg
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatal(err)
	}
	if state.Digest == "" {
		t.Fatal("state frame missing digest")
	}
}

func TestWS_BuyCommandRoundTrip(t *testing.T) {
	ts, _ := startTestServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version}); err != nil {
		t.Fatal(err)
	}
	readTyped(t, conn, protocol.TypeWelcome, 2*time.Second)

	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Ref:             "buy-1",
		Op:              protocol.OpBuy,
		EquipmentID:     "mower_riding",
	}
	if err := conn.WriteJSON(act); err != nil {
		t.Fatal(err)
	}

	raw := readTyped(t, conn, protocol.TypeResult, 2*time.Second)
	var res protocol.ResultMsg
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatal(err)
	}
	if !res.OK {
		t.Fatalf("buy failed: %s %s", res.Code, res.Message)
	}
	if res.Ref != "buy-1" || res.UnitID == "" {
		t.Fatalf("result = %+v", res)
	}
}

func TestWS_RejectsBadHello(t *testing.T) {
	ts, _ := startTestServer(t)
	conn := dial(t, ts)

	if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.9"}); err != nil {
		t.Fatal(err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection survived bad protocol_version")
	}
}
