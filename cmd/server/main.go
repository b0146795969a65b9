package main

import (
	"context"
	"log"

	"github.com/JaimeStill/lyceum/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	if err := srv.Run(context.Background()); err != nil {
		log.Fatal("server failed: ", err)
	}
}
