package main

import (
	"context"
	"log"

	"hustings/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build relay wiring.
// 3) Drain the ledger outbox onto the event bus until interrupted.
func main() {
	log.Println("hustings worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("hustings worker stopped with error: %v", err)
	}
}
