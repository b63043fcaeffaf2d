package cmd

import (
	"fmt"

	"rom-checker/catalog"
	"rom-checker/config"
	"rom-checker/scanner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// fileOp is one scanner operation over a directory.
type fileOp struct {
	name    string
	run     func(*scanner.Scanner, string) (*scanner.Outcome, error)
	mutates bool
}

var (
	opScan   = fileOp{name: "scan", run: (*scanner.Scanner).Scan, mutates: true}
	opUpdate = fileOp{name: "update", run: (*scanner.Scanner).Update, mutates: true}
	opCheck  = fileOp{name: "check", run: (*scanner.Scanner).Check}
	opList   = fileOp{name: "list", run: (*scanner.Scanner).List}
)

// fileCmd groups the operations on a directory of files
var fileCmd = &cobra.Command{
	Use:   "file",
	Short: "Scan, check and list directories of files",
}

var fileScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Hash every file of a directory and match it against the catalog",
	Long: `Hashes every file of the directory, matches it against the catalog and
stores the result. Previous results for the directory are replaced. With
--rename, files whose content matches a rom under another name are renamed
to the rom name.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFileCommand(cmd, opScan)
	},
}

var fileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Scan only the files that changed since the last scan",
	Long: `Trusts the stored results of files that are still present, hashes the new
ones and detects files that were moved or renamed since the last scan.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFileCommand(cmd, opUpdate)
	},
}

var fileCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the files against their stored hashes",
	Long: `Re-hashes every file with a stored result and reports files whose content
changed, files that disappeared and files that were never scanned.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFileCommand(cmd, opCheck)
	},
}

var fileListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the stored results of a directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFileCommand(cmd, opList)
	},
}

func init() {
	for _, c := range []*cobra.Command{fileScanCmd, fileUpdateCmd, fileCheckCmd, fileListCmd, fileBrowseCmd} {
		c.Flags().StringP("directory", "d", ".", "Directory to process")
		c.Flags().BoolP("recursive", "r", false, "Include subdirectories")
	}
	for _, c := range []*cobra.Command{fileScanCmd, fileUpdateCmd} {
		c.Flags().StringP("method", "m", "", "Hash method: crc, md5 or sha1 (default from configuration)")
		c.Flags().Bool("rename", false, "Rename misnamed files to their rom name")
		c.Flags().Bool("first-match", true, "Stop at the first catalog match of a file")
		c.Flags().StringSlice("show", nil, "Only print files with these statuses: exact, partial, miss")
		c.Flags().Bool("tui", false, "Show an interactive progress view")
	}
	for _, c := range []*cobra.Command{fileScanCmd, fileUpdateCmd, fileCheckCmd} {
		c.Flags().BoolP("archives", "a", false, "Look inside zip archives")
	}

	fileCmd.AddCommand(fileScanCmd, fileUpdateCmd, fileCheckCmd, fileListCmd, fileBrowseCmd)
	rootCmd.AddCommand(fileCmd)
}

// scannerOptions builds the scanner options from the configuration and the
// flags the command defines.
func scannerOptions(cmd *cobra.Command, c config.Config) (scanner.Options, error) {
	opts := scanner.Options{
		HashType:             c.HashType(),
		FirstMatch:           c.FirstMatch,
		IgnorePartialOnExact: c.IgnorePartialOnExact,
		ExcludeExtensions:    c.ExcludeExtensions,
	}
	flags := cmd.Flags()
	if flags.Lookup("recursive") != nil {
		opts.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Lookup("archives") != nil {
		opts.Archives, _ = flags.GetBool("archives")
	}
	if flags.Lookup("rename") != nil {
		opts.Rename, _ = flags.GetBool("rename")
	}
	if flags.Changed("first-match") {
		opts.FirstMatch, _ = flags.GetBool("first-match")
	}
	if flags.Changed("method") {
		method, _ := flags.GetString("method")
		ht, err := catalog.ParseHashType(method)
		if err != nil {
			return scanner.Options{}, err
		}
		opts.HashType = ht
	}
	return opts, nil
}

func boolFlag(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Lookup(name) == nil {
		return false
	}
	v, _ := cmd.Flags().GetBool(name)
	return v
}

// runFileCommand runs op over the directory flag and prints the outcome.
func runFileCommand(cmd *cobra.Command, op fileOp) error {
	dir, _ := cmd.Flags().GetString("directory")
	var show []string
	if cmd.Flags().Lookup("show") != nil {
		show, _ = cmd.Flags().GetStringSlice("show")
	}
	rep, err := newReporter(cmd.OutOrStdout(), show)
	if err != nil {
		return err
	}
	opts, err := scannerOptions(cmd, cfg)
	if err != nil {
		return err
	}

	out, err := runFileOp(op, dir, opts, boolFlag(cmd, "tui"))
	if err != nil {
		return err
	}
	rep.print(out)
	return nil
}

// runFileOp opens the configured backend and runs op over dir.
func runFileOp(op fileOp, dir string, opts scanner.Options, tui bool) (out *scanner.Outcome, err error) {
	s, err := openSession(cfg, cfg.Storage, openExisting, runLog)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	sc := scanner.New(s.backend(), opts, runLog)
	runLog.Infow("Running file operation", zap.String("operation", op.name), zap.String("directory", dir))
	if tui {
		out, err = runWithProgress(sc, op, dir)
	} else {
		out, err = op.run(sc, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op.name, dir, err)
	}
	if op.mutates {
		s.markDirty()
	}
	if out.Err != nil {
		runLog.Warnw("Some files failed", zap.String("operation", op.name), zap.Error(out.Err))
	}
	return out, nil
}
