package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/automata/internal/demo/robot"
	"github.com/aretw0/automata/internal/presentation/tui"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/observability"
	"github.com/aretw0/automata/pkg/world"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [machine]",
	Short: "Run a machine until its world is done or interrupted",
	Long: `Loads a machine (library ID, stored key or file; default: the bundled wall follower)
and runs it on the world's tick. With --robot the machine drives the Cornered arena
demo and stops when the robot reaches the goal or runs out of steps.

With --steps the world ticks that many times as fast as possible instead of on the clock.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		useRobot, _ := cmd.Flags().GetBool("robot")
		quiet, _ := cmd.Flags().GetBool("quiet")
		arg := argOrEmpty(args)
		if arg == "" {
			useRobot = true
		}

		var bot *robot.Robot
		var worldOpts []world.Option
		if useRobot {
			bot = robot.New(robot.Cornered())
			worldOpts = append(worldOpts, world.WithDomain(bot))
		}

		e, err := setup(cmd, worldOpts...)
		if err != nil {
			return err
		}
		defer e.close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		doc, err := resolveDocument(ctx, e.lab, arg)
		if err != nil {
			return err
		}
		w, err := e.lab.LoadDocument(doc)
		if err != nil {
			printValidation(cmd, doc.Name, err)
			return fmt.Errorf("cannot run %s", doc.Name)
		}
		detach := observability.LogEvents(e.logger, w)
		defer detach()

		out := cmd.OutOrStdout()
		interactive := !quiet && tui.IsTerminal(os.Stdout)
		if interactive {
			tui.PrintBanner(out, versionString())
		}

		line := tui.NewStatusLine(out)
		done := make(chan world.Status, 1)
		w.AddListener(world.EventTick, func(ev domain.Event) {
			if quiet {
				return
			}
			tick := ev.Payload.(world.Tick)
			name := ""
			if tick.State != nil {
				name = tick.State.Name()
			}
			if interactive {
				line.Update(name, tick.Stalled(), tick.Sensors, tick.Outputs)
				return
			}
			fmt.Fprintf(out, "%s in=%s out=%s stalled=%v\n", name, tick.Sensors, tick.Outputs, tick.Stalled())
		})
		w.AddListener(domain.EventDone, func(ev domain.Event) {
			select {
			case done <- ev.Payload.(world.Status):
			default:
			}
		})

		if steps > 0 {
			for i := 0; i < steps && !w.Status().Done; i++ {
				w.StepOnce()
			}
		} else {
			w.Start()
			select {
			case <-ctx.Done():
				w.Pause()
			case <-done:
			}
		}
		if interactive {
			line.Done()
		}

		if bot != nil {
			// the world is paused, so its domain is quiescent
			fmt.Fprint(out, bot.Render())
		}
		status, _ := json.Marshal(w.Status())
		fmt.Fprintf(out, "status: %s\n", status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("steps", 0, "Tick this many times without waiting for the clock (0: run on the clock)")
	runCmd.Flags().Bool("robot", false, "Drive the Cornered robot arena (implied without a machine argument)")
	runCmd.Flags().BoolP("quiet", "q", false, "Only print the final status")
	runCmd.Flags().Duration("timeout", 0, "Stop after this long (0: no limit)")
}
