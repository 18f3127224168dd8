package main

import (
	"context"
	"log"
	"time"

	"duochat/internal/chat"
	"duochat/internal/files"
	"duochat/internal/realtime"
	"duochat/internal/server"
	"duochat/internal/storage"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("zap.NewDevelopment: %v", err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()
	sugar.Info("Application is starting")

	serverCfg := server.EnvConfig{}
	if err := env.Parse(&serverCfg); err != nil {
		sugar.Fatalf("Cannot parse server env config: %v", err)
	}

	storageCfg := storage.Config{}
	if err := env.Parse(&storageCfg); err != nil {
		sugar.Fatalf("Cannot parse storage env config: %v", err)
	}

	store, err := storage.New(sugar, storageCfg, storage.ConnectionTimeout(30*time.Second))
	if err != nil {
		sugar.Fatalf("Cannot create Store instance: %v", err)
	}

	if err := store.InitSchema(context.Background()); err != nil {
		sugar.Fatalf("Cannot initialize database schema: %v", err)
	}

	fileStore, err := files.NewDiskStore(sugar, serverCfg.MediaDir)
	if err != nil {
		sugar.Fatalf("Cannot create media store: %v", err)
	}

	registry := realtime.NewRegistry(sugar)
	dispatcher := chat.NewDispatcher(sugar, registry)
	service := chat.NewService(sugar, store, store, store, fileStore, dispatcher)

	srv, err := server.NewServer(sugar, serverCfg, service, registry, server.ReadTimeout(5*time.Second))
	if err != nil {
		sugar.Fatalf("Cannot create Server instance: %v", err)
	}

	srv.RegisterAfterShutdown(func() {
		sugar.Info("Closing store")
		store.Close()
		sugar.Info("Store is closed")
	})

	if err := srv.Start(); err != nil {
		sugar.Fatalf("Cannot start http srv: %v", err)
	}
}
