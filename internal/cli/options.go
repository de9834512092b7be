package cli

import (
	"time"

	"github.com/aretw0/turing/internal/config"
)

// RunOptions configures a terminal run of one machine.
type RunOptions struct {
	// Machine is the definition name. Empty picks the only definition of a
	// file or directory, or the incrementer among built-ins.
	Machine string
	// Dir is a loam repository of definitions.
	Dir string
	// File is a single YAML definition.
	File     string
	Input    string
	Speed    time.Duration
	MaxSteps int
	Headless bool
	JSON     bool
	Debug    bool
	Config   config.Config
}

// ServeOptions configures the HTTP and MCP servers.
type ServeOptions struct {
	Dir    string
	File   string
	Debug  bool
	Config config.Config
}
