package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/okian/profilemeta/internal/adapters/source"
	"github.com/okian/profilemeta/internal/domain/model"
)

func importCommand(env *Env) *cobra.Command {
	var (
		sy   siteYearFlags
		file string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a cycle CSV into the SQLite store",
		Long: "Reads <profiles-dir>/<site><year>.csv, or --file when given, and replaces\n" +
			"the (site, year) table in the SQLite database.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := file
			if path == "" {
				path = source.NewCSVSource(env.Config.ProfilesDir).Path(sy.site, sy.year)
			}
			f, err := os.Open(filepath.Clean(path))
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer func() { _ = f.Close() }()

			records, err := source.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			db, err := source.OpenSQLite(cmd.Context(), env.Config.SQLitePath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.Import(cmd.Context(), model.NewTable(sy.site, sy.year, records)); err != nil {
				return err
			}
			env.printf("imported %s cycles for %s %d into %s\n",
				humanize.Comma(int64(len(records))), sy.site, sy.year, env.Config.SQLitePath)
			return nil
		},
	}
	sy.register(cmd)
	cmd.Flags().StringVar(&file, "file", "", "CSV file to import")
	return cmd
}
