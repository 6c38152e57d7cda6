package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"chessink/internal/config"
	"chessink/internal/gamesync"
	"chessink/internal/handlers"
	"chessink/internal/input"
	"chessink/internal/lichess"
	"chessink/internal/llss"
	"chessink/internal/logging"
	"chessink/internal/render"
	"chessink/internal/storage"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	addr := flag.String("addr", "", "listen address (overrides CHESSINK_ADDR)")
	flag.Parse()

	cfg := config.Load()
	if *debug {
		cfg.Debug = true
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	logging.Setup(cfg.Debug)

	db, err := storage.New(cfg.DatabaseDSN)
	if err != nil {
		logging.Log.WithError(err).Fatal("database init failed")
	}
	store := storage.NewStore(db)

	lichessClient := lichess.NewClient(cfg.LichessBaseURL)
	displayClient := llss.NewClient(cfg.LLSSBaseURL, cfg.LLSSToken)
	healthCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if !displayClient.Health(healthCtx) {
		logging.Log.WithField("url", cfg.LLSSBaseURL).Warn("display service unreachable at startup")
	}
	cancel()
	synchronizer := gamesync.New(store, lichessClient)
	processor := input.NewProcessor(store, lichessClient, synchronizer)

	renderer, err := render.New()
	if err != nil {
		logging.Log.WithError(err).Fatal("renderer init failed")
	}

	h := handlers.NewHandler(store, processor, synchronizer, lichessClient, displayClient, renderer, cfg)

	http.HandleFunc("/health", h.HandleHealth)
	http.HandleFunc("/accounts", handlers.RequireToken(cfg.LLSSToken, h.HandleAccounts))
	http.HandleFunc("/instances", handlers.RequireToken(cfg.LLSSToken, h.HandleInstances))
	http.HandleFunc("/instances/", handlers.RequireToken(cfg.LLSSToken, h.HandleInstance))

	logging.Log.WithField("addr", cfg.Addr).Infof("chessink %s listening", commit)
	logging.Log.Fatal(http.ListenAndServe(cfg.Addr, nil))
}
