package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tarifario/internal/ingest"
)

func newImportCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the article or tariff catalog with an ERP export",
		Long: `Import a ';'-separated CSV or an .xlsx / HTML .xls workbook.

The whole collection is replaced. Without --kind the kind is guessed from
the file name and header line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			k, err := resolveKind(kind, path, content)
			if err != nil {
				return err
			}
			res, err := ingest.NewService(a.db, a.logger).Import(cmd.Context(), k, filepath.Base(path), content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s rows=%d\n", res.Kind, res.Count)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "articulos|tarifas")
	return cmd
}

func resolveKind(flag, path string, content []byte) (ingest.Kind, error) {
	if flag != "" {
		return ingest.ParseKind(flag)
	}
	header := ""
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		header = ingest.HeaderLine(ingest.DecodeText(content))
	}
	detected := ingest.DetectKind(filepath.Base(path), header)
	if detected.Kind == "" {
		return "", fmt.Errorf("cannot tell articles from tariffs in %s, use --kind", path)
	}
	return detected.Kind, nil
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		kind   string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Convert a positional ERP workbook into an importable CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := ingest.ParseKind(kind)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			rows, err := ingest.ReadWorkbook(filepath.Base(args[0]), content)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			count := 0
			switch k {
			case ingest.KindArticles:
				articles := ingest.ConvertArticleRows(rows)
				count = len(articles)
				err = ingest.WriteArticlesCSV(&buf, articles)
			case ingest.KindTariffs:
				tariffs := ingest.ConvertTariffRows(rows)
				count = len(tariffs)
				err = ingest.WriteTariffsCSV(&buf, tariffs)
			}
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = a.cfg.OutputDir
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			out := filepath.Join(outDir, ingest.ConvertedFileName(k, time.Now()))
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "converted rows=%d file=%s\n", count, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "articulos", "articulos|tarifas")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default OUTPUT_DIR)")
	return cmd
}
