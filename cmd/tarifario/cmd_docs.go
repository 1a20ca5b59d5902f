package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tarifario/internal"
	"tarifario/internal/catalog"
	"tarifario/internal/documents"
	"tarifario/internal/util"
)

func newDocsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "docs", Short: "Printable store documents"}

	var (
		zone   string
		outDir string
		month  int
		year   int
	)
	inventory := &cobra.Command{
		Use:   "inventory",
		Short: "Monthly stock-count sheet for one store",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, store, err := loadStore(cmd, a, zone)
			if err != nil {
				return err
			}
			now := time.Now()
			if month == 0 {
				month = int(now.Month())
			}
			if year == 0 {
				year = now.Year()
			}

			inv := documents.BuildInventory(data.Articles, catalog.BuildIndex(data.Tariffs), store, documents.MonthName(time.Month(month)), year)
			path := filepath.Join(outputDir(a, outDir), inv.FileName())
			if err := documents.WriteInventoryXLSX(inv, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inventory rows=%d appendix=%d file=%s\n", len(inv.Main), len(inv.Appendix), path)
			return nil
		},
	}
	inventory.Flags().StringVar(&zone, "zone", "", "store zone")
	inventory.Flags().IntVar(&month, "month", 0, "month number (default current)")
	inventory.Flags().IntVar(&year, "year", 0, "year (default current)")
	inventory.Flags().StringVar(&outDir, "out", "", "output directory (default OUTPUT_DIR)")

	var (
		plZone  string
		plOut   string
		showPVP bool
	)
	priceList := &cobra.Command{
		Use:   "price-list",
		Short: "Counter price list for one store",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, store, err := loadStore(cmd, a, plZone)
			if err != nil {
				return err
			}
			company := util.FirstNonEmpty(data.CompanyName, a.cfg.CompanyName)
			pl, err := documents.BuildPriceList(data.Articles, catalog.BuildIndex(data.Tariffs), store, company, time.Now(), showPVP)
			if err != nil {
				return err
			}
			path := filepath.Join(outputDir(a, plOut), pl.FileName())
			if err := documents.WritePriceListXLSX(pl, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "price list rows=%d file=%s\n", len(pl.Rows), path)
			return nil
		},
	}
	priceList.Flags().StringVar(&plZone, "zone", "", "store zone")
	priceList.Flags().BoolVar(&showPVP, "show-pvp", true, "print retail prices")
	priceList.Flags().StringVar(&plOut, "out", "", "output directory (default OUTPUT_DIR)")

	cmd.AddCommand(inventory, priceList)
	return cmd
}

func loadStore(cmd *cobra.Command, a *app, zone string) (internal.AppData, internal.PointOfSale, error) {
	if strings.TrimSpace(zone) == "" {
		return internal.AppData{}, internal.PointOfSale{}, fmt.Errorf("--zone is required")
	}
	data, err := a.db.GetAppData(cmd.Context())
	if err != nil {
		return internal.AppData{}, internal.PointOfSale{}, err
	}
	for _, p := range data.POS {
		if strings.EqualFold(p.Zone, zone) {
			return data, p, nil
		}
	}
	return internal.AppData{}, internal.PointOfSale{}, fmt.Errorf("no point of sale in zone %s", zone)
}

func outputDir(a *app, flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.OutputDir
}
