package automata_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/automata"
	"github.com/aretw0/automata/pkg/adapters/memory"
	"github.com/aretw0/automata/pkg/domain"
)

// ExampleNew_memory runs a toggle machine from an in-memory library, one tick at a time.
// Off drives the lamp on its only transition, so the lamp stays lit while the machine rests there.
func ExampleNew_memory() {
	lib, err := memory.NewLibraryFromYAML(map[string]string{
		"toggle": `
version: "1"
sensors: [{name: button}]
actuators: [{name: lamp}]
states:
  - {id: 1, name: Off}
  - {id: 2, name: On}
transitions:
  - {id: 1, source: 1, target: 2, inputs: "1", outputs: "1"}
  - {id: 2, source: 2, target: 1, inputs: "0", outputs: "0"}
`,
	})
	if err != nil {
		log.Fatal(err)
	}

	lab := automata.New(automata.WithLibrary(lib))
	w, err := lab.Load(context.Background(), "toggle")
	if err != nil {
		log.Fatal(err)
	}

	for _, button := range []domain.Bit{domain.One, domain.One, domain.Zero} {
		if err := w.SetSensorValue(0, button); err != nil {
			log.Fatal(err)
		}
		tick := w.StepOnce()
		fmt.Printf("%s -> %s lamp=%s stalled=%v\n", button, tick.State.Name(), tick.Outputs, tick.Stalled())
	}

	// Output:
	// 1 -> On lamp=1 stalled=false
	// 1 -> On lamp=0 stalled=true
	// 0 -> Off lamp=1 stalled=false
}
