package main

import (
	"time"

	"UChat/middleware"
	authhandler "UChat/module/auth"
	chathandler "UChat/module/chat/handler"
	modhandler "UChat/module/moderation/handler"
	preshandler "UChat/module/presence/handler"
	rankhandler "UChat/module/rank/handler"
	roomhandler "UChat/module/room/handler"
	"UChat/tools/apiresp"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	auth       *authhandler.Handler
	chat       *chathandler.Handler
	moderation *modhandler.Handler
	presence   *preshandler.Handler
	rank       *rankhandler.Handler
	room       *roomhandler.Handler
}

func buildRouter(h handlers, startedAt time.Time) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Origin())

	// 健康页：不鉴权，探活 + 基本信息
	r.GET("/", func(c *gin.Context) {
		apiresp.OK(c, gin.H{
			"service":        "uchat-relay",
			"status":         "online",
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		})
	})

	// 换令牌本身只校验共享密钥
	middleware.POST(r, "/auth/token", h.auth.Token, middleware.RouteOpt{})

	// 消息
	middleware.POST(r, "/send", h.chat.Send, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/messages", h.chat.List, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/stats", h.chat.Stats, middleware.RouteOpt{})

	// 审核
	middleware.POST(r, "/mute", h.moderation.Mute, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/unmute", h.moderation.Unmute, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/banned", h.moderation.Banned, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/clear", h.moderation.Clear, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/archive/trigger", h.moderation.TriggerArchive, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/shutdown", h.moderation.Shutdown, middleware.RouteOpt{IsAuth: true})

	// 在线与角色
	middleware.GET(r, "/active", h.presence.Active, middleware.RouteOpt{})
	middleware.GET(r, "/ranks", h.rank.Ranks, middleware.RouteOpt{})

	// 房间
	middleware.POST(r, "/rooms", h.room.Create, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/rooms/join", h.room.Join, middleware.RouteOpt{IsAuth: true})
	middleware.POST(r, "/rooms/privacy", h.room.Privacy, middleware.RouteOpt{IsAuth: true})
	middleware.GET(r, "/rooms/members", h.room.Members, middleware.RouteOpt{IsAuth: true})

	return r
}
