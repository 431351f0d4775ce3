package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"UChat/global/config"
	"UChat/logger"
	midsec "UChat/middleware/security"
	"UChat/module/archive"
	authhandler "UChat/module/auth"
	chathandler "UChat/module/chat/handler"
	chatservice "UChat/module/chat/service"
	chatstore "UChat/module/chat/store"
	modhandler "UChat/module/moderation/handler"
	modservice "UChat/module/moderation/service"
	modstore "UChat/module/moderation/store"
	"UChat/module/presence"
	preshandler "UChat/module/presence/handler"
	presstore "UChat/module/presence/store"
	"UChat/module/rank"
	rankhandler "UChat/module/rank/handler"
	roomhandler "UChat/module/room/handler"
	roomservice "UChat/module/room/service"
	roomstore "UChat/module/room/store"
	"UChat/service/notify"
	"UChat/service/storage/mgo"
	"UChat/service/storage/pg"
	storredis "UChat/service/storage/redis"
	"UChat/tools/safe"
	toolsec "UChat/tools/security"

	"go.uber.org/zap"
)

func main() {
	startedAt := time.Now()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.Error("load config failed", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// —— 存储 ——
	pool, err := pg.New(ctx, pg.Config{URL: cfg.DatabaseURL})
	if err != nil {
		logger.Error("postgres init failed", zap.Error(err))
		os.Exit(1)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Error("schema init failed", zap.Error(err))
		os.Exit(1)
	}

	rdb, err := storredis.New(storredis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Error("redis init failed", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = rdb.Close() }()

	// —— 出站通知 ——
	var sinks []notify.Sink
	if cfg.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.WebhookURL))
	}
	var natsSink *notify.NatsSink
	if len(cfg.Nats.Servers) > 0 {
		natsSink, err = notify.NewNatsSink(notify.NatsSinkConfig{
			Servers: cfg.Nats.Servers,
			Name:    cfg.Nats.Name,
		})
		if err != nil {
			// 事件流是旁路，连不上降级继续跑
			logger.Warn("nats connect failed, events disabled", zap.Error(err))
		} else {
			sinks = append(sinks, natsSink)
			defer natsSink.Close()
		}
	}
	dispatcher := notify.NewDispatcher(sinks...)

	// —— 领域组件 ——
	ranks := rank.NewResolver(cfg.Ranks)

	tracker := presence.NewTracker(
		presstore.NewRedisStore(rdb),
		time.Duration(cfg.PresenceWindowSec)*time.Second,
	)

	authority, err := modservice.NewAuthority(ctx, modstore.NewPgStore(pool), ranks, dispatcher)
	if err != nil {
		logger.Error("mute cache warmup failed", zap.Error(err))
		os.Exit(1)
	}

	msgStore := chatstore.NewPgStore(pool)
	chatSvc := chatservice.NewService(msgStore, ranks, authority, tracker, dispatcher)
	authority.BindChat(chatSvc)

	roomSvc := roomservice.NewService(roomstore.NewPgStore(pool))

	// —— 归档 ——
	var uploader archive.Uploader
	if cfg.Mongo.URI != "" {
		db, err := mgo.New(ctx, mgo.Config{
			URI:         cfg.Mongo.URI,
			Database:    cfg.Mongo.Database,
			MaxPoolSize: cfg.Mongo.MaxPoolSize,
		})
		if err != nil {
			logger.Warn("mongo connect failed, offsite archive disabled", zap.Error(err))
		} else {
			uploader = archive.NewMongoUploader(db, cfg.Mongo.Collection)
		}
	}
	scheduler := archive.NewScheduler(msgStore, uploader, cfg.Archive.Dir,
		time.Duration(cfg.Archive.IntervalSec)*time.Second)
	authority.BindArchiver(scheduler)
	safe.Go(func() { scheduler.Run(ctx) })

	// —— HTTP ——
	tokenOpts := toolsec.DefaultOptions([]byte(cfg.AppSecret))
	if cfg.TokenTTLHours > 0 {
		tokenOpts.TTL = time.Duration(cfg.TokenTTLHours) * time.Hour
	}
	midsec.Configure(&midsec.Options{Secret: []byte(cfg.AppSecret)})

	router := buildRouter(handlers{
		auth:       authhandler.New(cfg.AppSecret, tokenOpts),
		chat:       chathandler.New(chatSvc, tracker, authority),
		moderation: modhandler.New(authority),
		presence:   preshandler.New(tracker),
		rank:       rankhandler.New(ranks),
		room:       roomhandler.New(roomSvc),
	}, startedAt)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	safe.Go(func() {
		logger.Infof("uchat relay listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited", zap.Error(err))
			stop()
		}
	})

	dispatcher.Lifecycle("🟢 **Universal Game Chat Started!**")

	<-ctx.Done()
	logger.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	// 等调度器收尾：正在跑的那轮要把本地快照写完
	select {
	case <-scheduler.Done():
	case <-time.After(30 * time.Second):
		logger.Warn("archive scheduler did not stop in time")
	}
	logger.Info("bye")
}
