/*
Package flume is a configuration-driven pipeline engine for customer
support workflows. A YAML file declares a sequence of stages; each
stage names the abilities it runs and the mode that decides how they
run. The engine executes the stages against a single evolving state
and returns that state when the last stage finishes.

# Concept

A run starts from a validated input payload (customer name, email,
query, priority, ticket id). Stages execute strictly in configured
order. Deterministic stages run every ability; conditional stages run
only when a named predicate holds; non-deterministic stages score the
candidate solution and branch between resolving and escalating. Every
ability reads the shared state and returns an update that is merged
back in, so data flows forward through the pipeline without hidden
channels.

Failures after validation never abort a run. An ability that is
missing, panics into an error, or loses its connector records an error
marker in the state and the pipeline keeps moving. The caller decides
what a degraded state is worth.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/flume"
	)

	func main() {
		eng, err := flume.New("config/stages.yaml")
		if err != nil {
			log.Fatal(err)
		}

		state, err := eng.Run(context.Background(), map[string]any{
			"customer_name": "Alice",
			"email":         "alice@example.com",
			"query":         "My order #123 hasn't arrived",
			"priority":      "high",
			"ticket_id":     "",
		})
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(state.GetString("response"))
	}

Knowledge base lookups run through a pluggable connector (see
WithConnector); the repository ships an in-memory connector and a
Redis-backed one. The cmd/flume binary wraps the engine as a CLI, an
HTTP service and an MCP server.
*/
package flume
