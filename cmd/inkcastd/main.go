// Command inkcastd runs the inkcast daemon without the CLI wrapper, for use
// under a service manager.
package main

import (
	"context"
	"log"

	"inkcast/internal/config"
	"inkcast/internal/daemonrun"
)

func main() {
	config.LoadDotenv()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg); err != nil {
		log.Fatalf("inkcastd: %v", err)
	}
}
