/*
Package turing is a deterministic single-tape Turing machine engine over the
binary alphabet {0, 1, blank}.

A machine is a transition table mapping (control state, read symbol) to
(next state, write action, head move), plus a start and a halt state. The
tape is unbounded in both directions: moving past either end appends a blank
cell, so the head always indexes a real cell.

# Concept

The engine separates the machine definition (Logic) from the run
configuration (State). Every step is a pure function of the table and the
current MachineState, so a run is reproducible from its input alone.
Execution ends in one of two terminal outcomes:

  - Halted: the machine reached its halt state (accepting).
  - Rejected: no transition exists for the current (state, symbol); the tape
    and head are left untouched.

Around the engine live the adapters: an auto-run Controller with speed
control and undo (pkg/runner), persisted sessions (pkg/session) backed by
memory, file or Redis stores, definition loaders for YAML files and loam
repositories, an HTTP API and an MCP server.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/turing"
		"github.com/aretw0/turing/pkg/machines"
	)

	func main() {
		eng, err := turing.New(machines.Incrementer())
		if err != nil {
			log.Fatal(err)
		}

		res, err := eng.Run(context.Background(), eng.NewState("111"), 1000)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.Outcome, res.State.Tape.Trimmed()) // halted 1000
	}
*/
package turing
