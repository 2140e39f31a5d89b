package main

import (
	"context"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tekvyy/keyless-golf/config"
	"github.com/tekvyy/keyless-golf/crypto"
	"github.com/tekvyy/keyless-golf/game"
	"github.com/tekvyy/keyless-golf/migrations"
	"github.com/tekvyy/keyless-golf/storage"
)

const roomTokenAge = time.Hour * 24

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	if len(allowedOrigins) > 0 {
		r.Use(func(ctx *gin.Context) {
			origin := ctx.Request.Header.Get("Origin")
			if origin == "" || slices.Contains(allowedOrigins, origin) {
				ctx.Next()
				return
			}
			ctx.String(http.StatusForbidden, "forbidden origin")
			ctx.Abort()
		})

		r.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowCredentials: true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders: []string{
				"Content-Type",
				"Authorization",
				"Upgrade",
				"Connection",
				"Sec-WebSocket-Key",
				"Sec-WebSocket-Version",
				"Sec-WebSocket-Extensions",
				"Sec-WebSocket-Protocol",
			},
			ExposeHeaders: []string{"X-Room-Token"},
		}))
	}

	return r
}

func main() {
	// logger setup
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log := zerolog.New(output).With().Timestamp().Logger()

	addr := config.Envs.ADDR
	if addr == "" {
		addr = ":5000"
	}

	var allowedOrigins []string
	if config.Envs.ALLOWED_ORIGINS != "" {
		allowedOrigins = strings.Split(config.Envs.ALLOWED_ORIGINS, ",")
	}

	tokenKey := config.Envs.ROOM_TOKEN_KEY
	requireTokens := config.Envs.REQUIRE_ROOM_TOKENS == "true"
	if tokenKey == "" {
		if requireTokens {
			log.Fatal().Msg("REQUIRE_ROOM_TOKENS is set but ROOM_TOKEN_KEY is missing")
		}
		// Rooms are ephemeral, so a per-process key is enough when nobody
		// pinned one.
		tokenKey = uuid.NewString()
	}
	tokens := crypto.NewTokenManager(tokenKey, roomTokenAge)

	// Dependencies
	store := game.NewStore()
	bus := game.NewBus()
	coordinator := game.NewCoordinator(store, bus, log)

	r := CreateServer(allowedOrigins)
	r.Use(game.RateLimitMiddleware(rate.Limit(20), 40))

	roomHandler := game.NewRoomHandler(coordinator, tokens, requireTokens)
	roomHandler.Register(r)

	if pgurl := config.Envs.POSTGRES_URL; pgurl != "" {
		if err := migrations.Migrate(pgurl); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		repo, err := storage.NewPostgresRepo(context.Background(), pgurl)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer repo.Close()

		storage.NewRecorder(repo, log).Attach(bus)
		storage.NewHistoryHandler(repo).Register(r)
		log.Info().Msg("match history enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go coordinator.RunSweeper(ctx, game.DefaultSweepInterval)

	log.Info().Str("addr", addr).Msg("room coordinator listening")
	if err := r.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
