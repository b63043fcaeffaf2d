package cmd

import (
	"github.com/spf13/cobra"
)

// defaultCmd represents the command that runs when no subcommand is specified
var defaultCmd = &cobra.Command{
	Use:    "default",
	Short:  "Default command when no subcommand is provided",
	Long:   `Lists the stored results of the current directory.`,
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDefault(cmd)
	},
}

func init() {
	defaultCmd.Flags().StringP("directory", "d", ".", "Directory to process")
	rootCmd.AddCommand(defaultCmd)
	// Running romcheck without a subcommand behaves like "romcheck default"
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runDefault(cmd)
	}
}

func runDefault(cmd *cobra.Command) error {
	dir := "."
	if f := cmd.Flags().Lookup("directory"); f != nil {
		dir = f.Value.String()
	}
	rep, err := newReporter(cmd.OutOrStdout(), nil)
	if err != nil {
		return err
	}
	opts, err := scannerOptions(cmd, cfg)
	if err != nil {
		return err
	}
	out, err := runFileOp(opList, dir, opts, false)
	if err != nil {
		return err
	}
	rep.print(out)
	return nil
}
