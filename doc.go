/*
Package strider is the control-and-capture engine for a remotely operated legged robot.

It acquires exclusive control of the robot through a lease, keeps that lease alive in the
background, drives locomotion commands to completion, captures and fuses depth and
visual camera imagery, and always hands control back, even when something fails.

# Concept

The engine only talks to the robot through the capability interfaces in pkg/ports.
Transports (the in-process scripted robot, the HTTP bridge) live in pkg/adapters, so the
same Engine runs against real hardware, a remote bridge or a test double.

# Key Features

  - Guaranteed release: a taken lease is returned exactly once on every exit path.
  - Keep-alive: consecutive ping failures past a threshold cancel the session with ErrLeaseLost.
  - Bounded motion: every command is polled against a hard wall-clock cap and honours cancellation.
  - Degraded captures: undecodable frames are still saved as raw greyscale.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/strider"
		"github.com/aretw0/strider/pkg/adapters/file"
		"github.com/aretw0/strider/pkg/domain"
	)

	func main() {
		ctx := context.Background()
		robot, err := strider.Connect(ctx, connector, "192.168.80.3", "user", "secret")
		if err != nil {
			log.Fatal(err)
		}

		eng, err := strider.New(robot, strider.WithStore(file.New("")))
		if err != nil {
			log.Fatal(err)
		}

		mission := strider.DefaultMission()
		mission.Behavior = domain.BehaviorCapture
		report, err := eng.Run(ctx, mission)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("saved %d artifacts", len(report.Artifacts))
	}
*/
package strider
