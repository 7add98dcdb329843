package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := getProvider()
		out, err := p.YAML()
		if err != nil {
			return err
		}
		if f := p.FileUsed(); f != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", f)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
