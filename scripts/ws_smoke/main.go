package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/pinlive-server/internal/auth"
	"github.com/vovakirdan/pinlive-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "bearer token; generated from -secret and -user when empty")
	secret := flag.String("secret", "", "JWT secret used to mint a token")
	userID := flag.String("user", "smoke-user", "user id to mint a token for; must exist via PUT /api/users/:id")
	pin := flag.String("pin", "smoke-pin", "pin to view and like")
	creator := flag.String("creator", "", "pin creator id to notify")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	if *token == "" {
		if *secret == "" {
			return fmt.Errorf("either -token or -secret is required")
		}
		minted, err := auth.GenerateToken(&auth.JWTConfig{Secret: []byte(*secret), TTL: time.Hour}, *userID, *userID)
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		*token = minted
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, resp, err := websocket.Dial(ctx, *addr, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + *token}},
	})
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(event string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", event, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Event: event, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", event, err)
		}
		return nil
	}

	if err := mustSend(proto.InboundPinView, *pin); err != nil {
		return err
	}
	if err := mustSend(proto.InboundPinLike, proto.PinLikeData{PinID: *pin, PinCreatorID: *creator}); err != nil {
		return err
	}
	// A direct message to ourselves comes back and ends the run.
	text := "smoke test"
	if err := mustSend(proto.InboundChatMessage, proto.ChatMessageData{RecipientID: *userID, Message: &text}); err != nil {
		return err
	}

	for {
		var outbound struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Printf("Received outbound: event=%s data=%s\n", outbound.Event, outbound.Data)

		if outbound.Event == proto.OutboundChatMessage {
			var evt proto.EventChatMessage
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				return fmt.Errorf("unmarshal chat message: %w", err)
			}
			fmt.Printf("ChatMessage: from=%s text=%q ts=%s\n", evt.SenderUsername, evt.Message, evt.Timestamp.Format(time.RFC3339))
			return nil
		}
	}
}
