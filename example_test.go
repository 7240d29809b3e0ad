package strider_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/strider"
	"github.com/aretw0/strider/pkg/adapters/memory"
	"github.com/aretw0/strider/pkg/domain"
)

// ExampleEngine_Run_memory drives a scripted in-memory robot through one move step.
// This is useful for testing, demos, or wiring checks without hardware.
func ExampleEngine_Run_memory() {
	connector := memory.NewConnector()
	connector.Register("spot", memory.NewRobot(memory.WithCredentials("user", "secret")))

	ctx := context.Background()
	robot, err := strider.Connect(ctx, connector, "spot", "user", "secret")
	if err != nil {
		log.Fatal(err)
	}

	engine, err := strider.New(robot)
	if err != nil {
		log.Fatal(err)
	}

	report, err := engine.Run(ctx, strider.Mission{
		Behavior: domain.BehaviorMove,
		Steps:    []domain.MoveStep{{Kind: domain.StepMove, DX: 0.5}},
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, step := range report.Steps {
		fmt.Printf("%s: %s\n", step.Step.Kind, step.Outcome)
	}
	fmt.Println(report.Phases)
	// Output:
	// move: reached
	// [init lease_held powered_on executing powered_off lease_released]
}
