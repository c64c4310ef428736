package http

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Pictionary/internal/adapters/ws"
	"github.com/dkeye/Pictionary/internal/app"
	"github.com/dkeye/Pictionary/internal/config"
	"github.com/dkeye/Pictionary/internal/core"
	"github.com/dkeye/Pictionary/internal/domain"
)

// SetupRouter wires HTTP routes (REST + WS) with orchestrator and transport.
//   - GET /                  liveness
//   - GET /api/rooms         room list
//   - GET /api/rooms/:room   one room
//   - GET /ws/:room/:player  WebSocket join
func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	// CORS covers the REST surface only. Upgrades on /ws accept any origin.
	web := r.Group("", cors.New(corsConfig(cfg.AllowedOrigins)))
	web.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Pictionary Game API"})
	})

	api := web.Group("/api")
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": orch.Registry.List()})
	})
	api.GET("/rooms/:room", func(c *gin.Context) {
		room, ok := orch.Registry.Get(domain.RoomID(c.Param("room")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, room.Snapshot())
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	connOpts := ws.Options{
		SendBuffer: cfg.SendBuffer,
		WriteWait:  cfg.WriteWait,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		ReadLimit:  cfg.ReadLimit,
		RateLimit:  cfg.RateLimit,
		RateBurst:  cfg.RateBurst,
	}

	r.GET("/ws/:room/:player", func(c *gin.Context) {
		roomID, err := domain.NewRoomID(c.Param("room"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		name, err := domain.NewPlayerName(c.Param("player"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("ws upgrade")
			return
		}

		sid := core.SessionID(uuid.NewString())
		log.Info().
			Str("module", "adapters.http").
			Str("sid", string(sid)).
			Str("room", string(roomID)).
			Str("player", string(name)).
			Msg("new WS connection")

		conn := ws.NewConnection(sid, sock, connOpts)
		go conn.WritePump(ctx)

		m, err := orch.Join(roomID, name, sid, conn)
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("sid", string(sid)).Msg("join failed")
			conn.Close()
			return
		}
		// The read pump owns this goroutine until the client goes away.
		conn.ReadPump(ctx, func(data []byte) { orch.OnMessage(m, data) })
		orch.OnDisconnect(m)
	})

	log.Info().Str("module", "adapters.http").Strs("origins", cfg.AllowedOrigins).Msg("router setup")
	return r
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowCredentials = true
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
		return cc
	}
	cc.AllowOrigins = origins
	return cc
}
