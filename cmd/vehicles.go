package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetsim/core/model"
	"github.com/kilianp07/fleetsim/infra/logger"
	"github.com/kilianp07/fleetsim/infra/mqtt"
)

var (
	createCount  int
	controlID    string
	controlSpeed float64
	controlHead  float64
)

var vehiclesCmd = &cobra.Command{
	Use:   "vehicles",
	Short: "Vehicle related commands sent over MQTT",
}

var vehiclesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Ask the manager to create vehicles",
	RunE:  runVehiclesCreate,
}

var vehiclesControlCmd = &cobra.Command{
	Use:   "control",
	Short: "Change the heading or speed of a vehicle",
	RunE:  runVehiclesControl,
}

func init() {
	vehiclesCreateCmd.Flags().IntVarP(&createCount, "count", "n", 1, "number of vehicles to create")
	vehiclesControlCmd.Flags().StringVar(&controlID, "id", "", "vehicle id")
	vehiclesControlCmd.Flags().Float64Var(&controlSpeed, "speed", 0, "new speed in units per second")
	vehiclesControlCmd.Flags().Float64Var(&controlHead, "heading", 0, "new heading in radians")
	_ = vehiclesControlCmd.MarkFlagRequired("id")
	vehiclesCmd.AddCommand(vehiclesCreateCmd, vehiclesControlCmd)
	rootCmd.AddCommand(vehiclesCmd)
}

// withPublisher connects a short lived client and passes a Publisher to fn.
func withPublisher(fn func(ctx context.Context, p *mqtt.Publisher) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	mcfg := cfg.MQTT
	mcfg.ClientID = fmt.Sprintf("%s-cli-%d", mcfg.ClientID, time.Now().UnixNano())
	client, err := mqtt.Connect(mcfg, logger.New("cli"))
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return fn(ctx, mqtt.NewPublisher(client, mcfg))
}

func runVehiclesCreate(cmd *cobra.Command, args []string) error {
	if createCount < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	return withPublisher(func(ctx context.Context, p *mqtt.Publisher) error {
		for i := 0; i < createCount; i++ {
			if err := p.RequestVehicle(ctx); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "requested %d vehicle(s)\n", createCount)
		return err
	})
}

func runVehiclesControl(cmd *cobra.Command, args []string) error {
	var cmds []model.Command
	if cmd.Flags().Changed("heading") {
		cmds = append(cmds, model.SetHeading(controlHead))
	}
	if cmd.Flags().Changed("speed") {
		cmds = append(cmds, model.SetSpeed(controlSpeed))
	}
	if len(cmds) == 0 {
		return fmt.Errorf("one of --heading or --speed is required")
	}
	return withPublisher(func(ctx context.Context, p *mqtt.Publisher) error {
		for _, c := range cmds {
			if err := p.Control(ctx, controlID, c); err != nil {
				return err
			}
		}
		return nil
	})
}
