package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/wordturn/internal/cache"
	"github.com/kiliankoe/wordturn/internal/config"
	"github.com/kiliankoe/wordturn/internal/game"
	"github.com/kiliankoe/wordturn/internal/words"
	"github.com/kiliankoe/wordturn/internal/words/dictionary"
	"github.com/kiliankoe/wordturn/internal/words/randomword"
	"github.com/kiliankoe/wordturn/internal/ws"
	staticserver "github.com/kiliankoe/wordturn/static"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const version = "v1.0.0-dev"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Wordturn - Real-time multiplayer word guessing

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                 Port to listen on (default: 8080)
  LOG_LEVEL            debug, info, warn or error (default: info)
  WORD_API_URL         Random word service (default: https://random-word-api.vercel.app)
  DICTIONARY_API_URL   Dictionary service (default: https://api.dictionaryapi.dev)
  WORD_TIMEOUT         Timeout per word service call (default: 4s)
  REDIS_ADDR           Redis address for leaderboard and word cache (optional)
  REDIS_PASSWORD       Redis password (optional)
  REDIS_DB             Redis database (default: 0)
  EXPORT_ENABLED       Export game results to file (default: true)
  EXPORT_FILE          Path to export game results (default: ./wordturn-results.txt)
  START_DELAY          Delay before the first round (default: 1.5s)
  TURN_DELAY           Delay before the first turn of a round (default: 350ms)
  GAME_OVER_DELAY      Delay between the last round and game over (default: 6s)
  RATE_LIMIT           Socket actions per second per connection (default: 5)
  RATE_BURST           Socket action burst per connection (default: 10)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000

Visit http://localhost:8080 after starting the server.
`, os.Args[0], os.Args[0], os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("Wordturn %s\n", version)
		return
	}

	cfg := config.FromEnv()
	if *portFlag != "" {
		cfg.Port = *portFlag
	}

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(cw)
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		log.Info().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Words: remote generator and dictionary over the embedded corpus
	provider := words.New(
		randomword.New(cfg.WordAPIURL, cfg.WordTimeout),
		dictionary.New(cfg.DictionaryAPIURL, cfg.WordTimeout),
	)

	var leaderboard *cache.Leaderboard
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     strings.TrimPrefix(cfg.RedisAddr, "redis://"),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, leaderboard and word cache disabled")
		} else {
			provider.SetCache(cache.NewWordCache(rdb))
			leaderboard = cache.NewLeaderboard(rdb)
			log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
		}
	}

	// Socket server + room registry
	rm := game.NewRegistry(game.Options{
		Words: provider,
		Timing: game.Timing{
			StartDelay:    cfg.StartDelay,
			TurnDelay:     cfg.TurnDelay,
			GameOverDelay: cfg.GameOverDelay,
		},
		WordTimeout: cfg.WordTimeout,
	})
	sock := ws.New(rm, cfg)
	rm.SetDispatcher(sock)
	if cfg.ExportEnabled {
		sock.AddRecorder(game.NewFileRecorder(cfg.ExportFile))
	}
	if leaderboard != nil {
		sock.AddRecorder(leaderboard)
	}
	io := sock.Mount(r)
	defer io.Close()

	mountAPI(r, rm, sock, leaderboard)
	// Serve frontend (if embedded build is present) for all other routes
	r.NoRoute(gin.WrapH(staticserver.Handler()))

	log.Info().Str("port", cfg.Port).Str("version", version).Msg("listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
