// Package ws exposes the session to observers over a websocket. Each
// connection performs a HELLO/WELCOME handshake, then receives one STATE
// frame per tick and may submit ACT commands that are answered with RESULT.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brentyates/greenkeeper-simulator-sub005/internal/protocol"
	"github.com/brentyates/greenkeeper-simulator-sub005/internal/sim/session"
)

const outQueueSize = 16

type Server struct {
	sess *session.Session
	log  *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(sess *session.Session, logger *log.Logger) *Server {
	return &Server{
		sess: sess,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		observerID, out := s.handshake(conn)
		if observerID == "" {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine: the session never writes to the socket itself.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			if base.Type != protocol.TypeAct {
				continue
			}
			var act protocol.ActMsg
			if err := json.Unmarshal(msg, &act); err != nil {
				continue
			}
			if act.ProtocolVersion != protocol.Version {
				s.sendResult(ctx, out, protocol.ResultMsg{
					Type: protocol.TypeResult, ProtocolVersion: protocol.Version,
					Ref: act.Ref, Code: protocol.ErrProtoBadRequest, Message: "bad protocol_version",
				})
				continue
			}
			resp := make(chan protocol.ResultMsg, 1)
			s.sess.Inbox() <- session.Command{
				Ref:         act.Ref,
				Op:          act.Op,
				EquipmentID: act.EquipmentID,
				UnitID:      act.UnitID,
				Resp:        resp,
			}
			go func() {
				select {
				case <-ctx.Done():
				case res := <-resp:
					s.sendResult(ctx, out, res)
				}
			}()
		}

		s.sess.Leave() <- observerID
	}
}

func (s *Server) sendResult(ctx context.Context, out chan []byte, res protocol.ResultMsg) {
	res.Type = protocol.TypeResult
	res.ProtocolVersion = protocol.Version
	b, err := json.Marshal(res)
	if err != nil {
		return
	}
	select {
	case <-ctx.Done():
	case out <- b:
	}
}

func (s *Server) handshake(conn *websocket.Conn) (observerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return "", nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return "", nil
	}
	if hello.ObserverName == "" {
		hello.ObserverName = "observer"
	}

	out = make(chan []byte, outQueueSize)
	respCh := make(chan protocol.WelcomeMsg, 1)
	s.sess.Join() <- session.JoinRequest{
		Name: hello.ObserverName,
		Out:  out,
		Resp: respCh,
	}
	welcome := <-respCh

	if err := writeJSON(conn, welcome); err != nil {
		return "", nil
	}
	return welcome.ObserverID, out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
