// Command storectl is a thin cobra-based operator harness over the
// storage core: init a tree, print catalog stats, or force a WAL
// vacuum. It is not a query engine and carries no SQL, mirroring
// minidb/cmd/minidb's role as a harness over the library rather than a
// reimplementation of its logic.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rowstore/internal/catalog"
	"rowstore/internal/config"
	"rowstore/internal/log"
	"rowstore/internal/schema"
	"rowstore/internal/tablespace"
	"rowstore/internal/wal"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:   "storectl",
		Short: "Operator harness for the storage core",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a viper-readable config file")

	root.AddCommand(initCmd(), statsCmd(), vacuumCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgPath)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty metastore tree at the configured root",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if _, err := tablespace.BuildMetastore(cfg.Root); err != nil {
				return err
			}
			log.WithField("root", cfg.Root).Infof("storectl: initialized metastore")
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print every database/table registered under the metastore",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := catalog.Build(cfg.Root)
			if err != nil {
				return err
			}
			if len(cat.Tables) == 0 {
				fmt.Println("(no tables registered)")
				return nil
			}
			for name, t := range cat.Tables {
				fmt.Printf("%s\t%d file(s)\n", name, len(t.Table.FilePaths))
			}
			return nil
		},
	}
}

func vacuumCmd() *cobra.Command {
	var schemaSpec string
	cmd := &cobra.Command{
		Use:   "vacuum",
		Short: "Compact the write-ahead log at the configured WAL path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := schema.Parse(schemaSpec)
			if err != nil {
				return err
			}
			w, err := wal.Build(cfg.WALPath)
			if err != nil {
				return err
			}
			defer w.Close()
			if err := w.Vacuum(s); err != nil {
				return err
			}
			log.WithField("path", cfg.WALPath).Infof("storectl: vacuumed wal")
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaSpec, "schema", "", "schema describing every row image currently in the wal (required)")
	cmd.MarkFlagRequired("schema")
	return cmd
}
