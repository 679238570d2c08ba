package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/slingshot/internal/game"
	rkeys "github.com/playmatatu/slingshot/internal/redis"
	"github.com/redis/go-redis/v9"
)

// StartEventSubscriber relays events published by any instance to the rooms
// of this one.
func StartEventSubscriber(ctx context.Context, rdb *redis.Client, h *Hub) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, rkeys.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		<-ctx.Done()
		pubsub.Close()
	}()

	go func() {
		log.Printf("[WS] %s subscriber started", rkeys.EventsChannel)
		for msg := range ch {
			var ev game.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			h.HandleEvent(ev)
		}
		log.Printf("[WS] %s subscriber stopped", rkeys.EventsChannel)
	}()
}
