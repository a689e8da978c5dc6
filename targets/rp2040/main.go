//go:build rp2040

package main

import (
	_ "embed"

	"irqblink/config"
	"irqblink/core"
)

//go:embed board.json
var boardJSON []byte

// shared is reached from the interrupt handlers, so it lives at package
// level
var shared core.Shared

func main() {
	cfg, err := config.LoadConfig(boardJSON)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	InitClock()
	InitDebugUART(cfg)

	idle := core.NewIdle(NewBoard(cfg), &shared)
	idle.Run()

	// Only reachable if a halt handler returns
	for {
	}
}
