package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sweeney/presence-sensor/internal/gpio"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Read the motion sensor once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getProvider().Current()
		reader, err := gpio.NewRealReader(sensorLine(cfg))
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer reader.Close()

		return printState(cmd, reader)
	},
}

func printState(cmd *cobra.Command, reader gpio.Reader) error {
	motion, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "motion: %s\n", motionString(motion))
	return nil
}

func motionString(motion bool) string {
	if motion {
		return "YES"
	}
	return "NO"
}
