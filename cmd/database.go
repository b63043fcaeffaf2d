package cmd

import (
	"fmt"
	"io"

	"rom-checker/catalog"
	"rom-checker/config"
	"rom-checker/db"
	"rom-checker/ui"

	"github.com/spf13/cobra"
)

// dbCmd groups the operations on the SQLite database
var dbCmd = &cobra.Command{
	Use:     "db",
	Aliases: []string{"database"},
	Short:   "Manage and query the catalog database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init <dat>",
	Short: "Create the database and import a DAT file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, config.StorageDatabase, createNew, args[0])
	},
}

var dbImportCmd = &cobra.Command{
	Use:   "import <dat>",
	Short: "Merge a DAT file into the existing database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, config.StorageDatabase, openExisting, args[0])
	},
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show what the database holds",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInfo(cmd, config.StorageDatabase)
	},
}

var dbSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the catalog database",
}

var dbSearchGameCmd = &cobra.Command{
	Use:   "game <name>",
	Short: "Find games by name",
	Long: `Finds games whose name contains the text, ignoring case.
With --exact only the game with exactly that name is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exact, _ := cmd.Flags().GetBool("exact")
		return withStore(func(store *db.Store) error {
			games, err := store.SearchGames(args[0], !exact)
			if err != nil {
				return err
			}
			printGames(cmd.OutOrStdout(), games)
			return nil
		})
	},
}

var dbSearchRomCmd = &cobra.Command{
	Use:   "rom <text>",
	Short: "Find roms by name or hash",
	Long: `Finds roms by name (substring, ignoring case) or by an exact crc, md5
or sha1 value, selected with --mode.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		field, err := db.ParseRomField(mode)
		if err != nil {
			return err
		}
		return withStore(func(store *db.Store) error {
			var results []catalog.GameRoms
			if field == db.FieldName {
				results, err = store.SearchRoms(nil, map[db.RomField]string{field: args[0]})
			} else {
				results, err = store.SearchRoms(map[db.RomField]string{field: args[0]}, nil)
			}
			if err != nil {
				return err
			}
			printGameRoms(cmd.OutOrStdout(), results)
			return nil
		})
	},
}

func init() {
	dbSearchGameCmd.Flags().BoolP("exact", "e", false, "Match the game name exactly")
	dbSearchRomCmd.Flags().StringP("mode", "m", string(db.FieldName), "Search by name, crc, md5 or sha1")

	dbSearchCmd.AddCommand(dbSearchGameCmd, dbSearchRomCmd)
	dbCmd.AddCommand(dbInitCmd, dbImportCmd, dbInfoCmd, dbSearchCmd)
	rootCmd.AddCommand(dbCmd)
}

// withStore runs fn against the existing database.
func withStore(fn func(*db.Store) error) (err error) {
	s, err := openSession(cfg, config.StorageDatabase, openExisting, runLog)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(s.store)
}

var romHeaders = []string{"Rom", "Size", "CRC", "MD5", "SHA1"}

var romAligns = []ui.ColumnAlignment{ui.AlignLeft, ui.AlignRight, ui.AlignLeft, ui.AlignLeft, ui.AlignLeft}

func romRows(roms []catalog.Rom) [][]string {
	rows := make([][]string, 0, len(roms))
	for _, r := range roms {
		rows = append(rows, []string{r.Name, ui.Size(r.Size), r.CRC, r.MD5, r.SHA1})
	}
	return rows
}

func printGames(w io.Writer, games []catalog.Game) {
	if len(games) == 0 {
		fmt.Fprintln(w, "No games found")
		return
	}
	color := ui.ShouldColorize(w)
	for _, g := range games {
		printGameHeader(w, g.Name, g.Description, color)
		fmt.Fprintln(w, ui.RenderTable(romHeaders, romRows(g.Roms), romAligns))
	}
	fmt.Fprintf(w, "%d games\n", len(games))
}

func printGameRoms(w io.Writer, results []catalog.GameRoms) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No roms found")
		return
	}
	color := ui.ShouldColorize(w)
	roms := 0
	for _, gr := range results {
		printGameHeader(w, gr.Game.Name, gr.Game.Description, color)
		fmt.Fprintln(w, ui.RenderTable(romHeaders, romRows(gr.Roms), romAligns))
		roms += len(gr.Roms)
	}
	fmt.Fprintf(w, "%d roms in %d games\n", roms, len(results))
}

func printGameHeader(w io.Writer, name, description string, color bool) {
	title := ui.Title(name, color)
	if description != "" && description != name {
		title += " (" + description + ")"
	}
	fmt.Fprintln(w, title)
}
