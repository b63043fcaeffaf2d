package cmd

import (
	"fmt"

	"rom-checker/config"

	"github.com/spf13/cobra"
)

// cacheCmd groups the operations on the cache file
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the catalog cache file",
}

var cacheInitCmd = &cobra.Command{
	Use:   "init <dat>",
	Short: "Create a new cache from a DAT file",
	Long: `Parses the DAT file and writes a new cache file holding its catalog.
An existing cache file, including its scanned file records, is replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, config.StorageCache, createNew, args[0])
	},
}

var cacheImportCmd = &cobra.Command{
	Use:   "import <dat>",
	Short: "Merge a DAT file into the existing cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, config.StorageCache, openExisting, args[0])
	},
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show what the cache holds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInfo(cmd, config.StorageCache)
	},
}

func init() {
	cacheCmd.AddCommand(cacheInitCmd, cacheImportCmd, cacheInfoCmd)
	rootCmd.AddCommand(cacheCmd)
}

// runImport opens or creates the storage and merges the DAT file into it.
func runImport(cmd *cobra.Command, storage string, mode openMode, datPath string) (err error) {
	s, err := openSession(cfg, storage, mode, runLog)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	data, err := s.importDat(datPath)
	if err != nil {
		return err
	}
	roms := 0
	for _, g := range data.Games {
		roms += len(g.Roms)
	}
	name := data.Header.Name
	if name == "" {
		name = datPath
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d games, %d roms\n", name, len(data.Games), roms)
	return nil
}

// runInfo prints the catalog counts of the storage.
func runInfo(cmd *cobra.Command, storage string) (err error) {
	s, err := openSession(cfg, storage, openExisting, runLog)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	games, roms, files, err := s.stats()
	if err != nil {
		return err
	}
	path := cfg.CachePath
	if storage == config.StorageDatabase {
		path = cfg.DatabasePath
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", storage, path)
	fmt.Fprintf(out, "  games:         %d\n", games)
	fmt.Fprintf(out, "  roms:          %d\n", roms)
	fmt.Fprintf(out, "  scanned files: %d\n", files)
	return nil
}
