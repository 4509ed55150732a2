package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/olivierh59500/energy-chunks-go/internal/distribute"
)

// saveConfig writes the current distributor tuning to JSON
func (s *Simulation) saveConfig(filename string) {
	data, err := json.MarshalIndent(s.dist.Params(), "", "  ")
	if err != nil {
		log.Printf("save config: %v", err)
		return
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		log.Printf("save config: %v", err)
	}
}

// loadConfig reads distributor tuning from JSON, leaving the current
// tuning untouched if the file is missing or malformed.
func (s *Simulation) loadConfig(filename string) {
	data, err := os.ReadFile(filename)
	if err != nil {
		log.Printf("load config: %v", err)
		return
	}
	params := distribute.DefaultParams()
	if err := json.Unmarshal(data, &params); err != nil {
		log.Printf("load config: %v", err)
		return
	}
	s.dist.SetParams(params)
}
