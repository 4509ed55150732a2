package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configPath := flag.String("config", "config.json", "distributor tuning file (S/L keys)")
	monitorAddr := flag.String("monitor", "", "serve chunk positions over websocket, e.g. localhost:8080")
	flag.Parse()

	var monitor *Monitor
	if *monitorAddr != "" {
		monitor = NewMonitor()
		monitor.Start(*monitorAddr)
	}

	sim := NewSimulation(*configPath, monitor)

	// Set up Ebitengine game
	ebiten.SetWindowSize(WindowWidth, WindowHeight)
	ebiten.SetWindowTitle("Energy Chunks")
	ebiten.SetTPS(60) // Target 60 ticks per second

	// Run the game loop
	if err := ebiten.RunGame(sim); err != nil {
		log.Fatal(err)
	}
}
