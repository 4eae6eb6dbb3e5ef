package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kiliankoe/wordturn/internal/cache"
	"github.com/kiliankoe/wordturn/internal/game"
	"github.com/kiliankoe/wordturn/internal/ws"
	"github.com/rs/zerolog/log"
)

// mountAPI registers the read-only JSON endpoints. lb may be nil when Redis
// is not configured.
func mountAPI(r *gin.Engine, rm *game.Registry, sock *ws.Server, lb *cache.Leaderboard) {
	api := r.Group("/api")
	api.GET("/rooms/:code", func(c *gin.Context) {
		room, err := rm.Get(strings.ToUpper(strings.TrimSpace(c.Param("code"))))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "room_not_found"})
			return
		}
		c.JSON(http.StatusOK, room.Summary())
	})
	api.GET("/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": rm.Count(), "connections": sock.Connections()})
	})
	api.GET("/leaderboard", func(c *gin.Context) {
		if lb == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard_disabled"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if limit <= 0 || limit > 100 {
			limit = 10
		}
		entries, err := lb.Top(c.Request.Context(), limit)
		if err != nil {
			log.Error().Err(err).Msg("leaderboard read failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard_unavailable"})
			return
		}
		games, _ := lb.GamesPlayed(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"entries": entries, "games": games})
	})
}
