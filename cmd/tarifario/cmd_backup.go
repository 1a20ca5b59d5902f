package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"tarifario/internal/backup"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "backup", Short: "JSON snapshots and restore points"}

	var outDir string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the whole store as a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outDir == "" {
				outDir = a.cfg.OutputDir
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, backup.FileName(time.Now()))
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := backup.NewService(a.db, a.logger).Export(cmd.Context(), f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup written file=%s\n", path)
			return nil
		},
	}
	export.Flags().StringVar(&outDir, "out", "", "output directory (default OUTPUT_DIR)")

	restore := &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace everything with a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := backup.NewService(a.db, a.logger).Restore(cmd.Context(), f); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "snapshot restored")
			return nil
		},
	}

	snapshot := &cobra.Command{
		Use:   "snapshot",
		Short: "Store a named restore point",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := backup.NewService(a.db, a.logger).Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restore point id=%s name=%q\n", b.ID, b.Name)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List restore points, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			backups, err := backup.NewService(a.db, a.logger).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, b := range backups {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.ID, b.Name)
			}
			return nil
		},
	}

	restorePoint := &cobra.Command{
		Use:   "restore-point ID",
		Short: "Return to a stored restore point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := backup.NewService(a.db, a.logger).RestorePoint(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restore point %s applied\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(export, restore, snapshot, list, restorePoint)
	return cmd
}
