package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"taskden/internal/config"
	"taskden/internal/serverapp"
)

func main() {
	cfg, err := config.Load("taskden.yml")
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("load config: %v", err)
		}
		cfg = config.Default()
	}
	config.FromEnv(cfg)

	handler, err := serverapp.NewHandler(serverapp.Options{
		Config:  cfg,
		DataDir: "data",
		Logger:  log.Default(),
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	log.Printf("listening on http://localhost%s", cfg.Server.Addr)
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, handler))
}
