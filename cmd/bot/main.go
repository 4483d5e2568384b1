// bot is a minimal observer client: it connects to a running simd, keeps
// the fleet topped up to a target size and reports session state. Useful
// for smoke-testing a server and as a protocol reference.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/protocol"
)

func main() {
	var (
		url         = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name        = flag.String("name", "bot", "observer name")
		equipmentID = flag.String("equipment", "mower_riding", "equipment template to buy")
		fleetSize   = flag.Int("fleet_size", 3, "target fleet size")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var pendingRef string
	refSeq := 0

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME observer_id=%s session=%s course=%dx%d seed=%d",
				w.ObserverID, w.SessionID, w.Params.CourseWidth, w.Params.CourseHeight, w.Params.Seed)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			if st.Tick%100 == 0 {
				logger.Printf("tick=%d budget=%.0f fleet=%d (working=%d idle=%d charging=%d broken=%d)",
					st.Tick, st.Budget, st.Fleet.Total, st.Fleet.Working, st.Fleet.Idle, st.Fleet.Charging, st.Fleet.Broken)
			}
			// One command in flight at a time.
			if pendingRef != "" || st.Fleet.Total >= *fleetSize {
				continue
			}
			refSeq++
			pendingRef = fmt.Sprintf("buy_%d", refSeq)
			act := protocol.ActMsg{
				Type:            protocol.TypeAct,
				ProtocolVersion: protocol.Version,
				Ref:             pendingRef,
				Op:              protocol.OpBuy,
				EquipmentID:     *equipmentID,
			}
			if err := conn.WriteJSON(act); err != nil {
				return
			}

		case protocol.TypeResult:
			var res protocol.ResultMsg
			if err := json.Unmarshal(msg, &res); err != nil {
				continue
			}
			if res.Ref == pendingRef {
				pendingRef = ""
			}
			if res.OK {
				logger.Printf("RESULT ref=%s ok unit=%s amount=%.0f", res.Ref, res.UnitID, res.Amount)
			} else {
				logger.Printf("RESULT ref=%s %s: %s", res.Ref, res.Code, res.Message)
			}
		}
	}
}
