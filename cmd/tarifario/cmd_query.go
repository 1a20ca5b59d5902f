package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tarifario/internal"
	"tarifario/internal/notify"
	"tarifario/internal/query"
)

type queryOptions struct {
	zone       string
	compare    []string
	search     string
	section    string
	family     string
	offers     bool
	noPrice    bool
	notes      []string
	export     string
	xlsx       string
	submit     bool
	supervisor string
}

func (o queryOptions) state() query.State {
	st := query.DefaultState(o.zone)
	if len(o.compare) > 0 {
		st.Mode = query.CompareZones{Zones: o.compare}
	}
	st.Search = o.search
	if o.section != "" {
		st.Section = o.section
	}
	if o.family != "" {
		st.Family = o.family
	}
	st.OffersOnly = o.offers
	st.NoPriceOnly = o.noPrice
	return st
}

func newQueryCmd(a *app) *cobra.Command {
	var opts queryOptions

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Filter the catalog and show, export or report the results",
		Long: `Filter the catalog by text, section, family and zone and print the
prices of the matching articles.

--compare switches to side-by-side zones. --export prints the ';'
export instead of the table; --xlsx writes it as a workbook; --submit
stores it in the admin's report inbox.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, a, opts)
		},
	}

	bindQueryFlags(cmd, &opts)
	return cmd
}

func bindQueryFlags(cmd *cobra.Command, opts *queryOptions) {
	f := cmd.Flags()
	f.StringVar(&opts.zone, "zone", internal.AllZones, "single zone to price against")
	f.StringSliceVar(&opts.compare, "compare", nil, "zones to compare side by side")
	f.StringVar(&opts.search, "search", "", "text in description or reference")
	f.StringVar(&opts.section, "section", "", "Carnicería|Charcutería|<code>")
	f.StringVar(&opts.family, "family", "", "family code")
	f.BoolVar(&opts.offers, "offers", false, "only articles on offer")
	f.BoolVar(&opts.noPrice, "no-price", false, "only articles without any list price")
	f.StringArrayVar(&opts.notes, "note", nil, "REF=text annotation, repeatable")
	f.StringVar(&opts.export, "export", "", "Completo|Solo Notas")
	f.StringVar(&opts.xlsx, "xlsx", "", "write the export to this workbook")
	f.BoolVar(&opts.submit, "submit", false, "send the export to the report inbox")
	f.StringVar(&opts.supervisor, "supervisor", "", "name on the submitted report")
}

func runQuery(cmd *cobra.Command, a *app, opts queryOptions) error {
	notifier, err := notify.FromConfig(a.cfg, a.logger)
	if err != nil {
		return err
	}
	session := query.NewSession(a.db, notifier, a.logger)
	if err := session.Load(cmd.Context()); err != nil {
		return err
	}
	session.SetState(opts.state())

	for _, n := range opts.notes {
		ref, text, ok := strings.Cut(n, "=")
		if !ok {
			return fmt.Errorf("invalid --note %q, want REF=text", n)
		}
		session.Notes().Set(strings.TrimSpace(ref), text)
	}

	out := cmd.OutOrStdout()
	exporting := opts.export != "" || opts.xlsx != "" || opts.submit
	if !exporting {
		return printResults(out, session)
	}

	mode, err := query.ParseExportMode(opts.export)
	if err != nil {
		return err
	}

	if opts.submit {
		supervisor := opts.supervisor
		if supervisor == "" {
			supervisor = a.cfg.SupervisorName
		}
		report, err := session.SubmitReport(cmd.Context(), supervisor, mode)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "report submitted id=%s zone=%s\n", report.ID, report.ZoneFilter)
		return nil
	}

	payload := session.Export(mode)
	if opts.xlsx != "" {
		if err := query.WriteXLSX(payload, opts.xlsx); err != nil {
			return err
		}
		fmt.Fprintf(out, "export written file=%s\n", opts.xlsx)
		return nil
	}
	_, err = out.Write(query.WithBOM(payload))
	return err
}

func printResults(out io.Writer, s *query.Session) error {
	mode := s.State().Mode
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Referencia\tDescripción\tSección\tFamilia\t%s\n", strings.Join(mode.Labels(), "\t"))

	results := s.Results()
	for _, a := range results {
		cells := []string{}
		for _, zp := range s.Project(a.Reference) {
			cell := zp.Price.Display()
			if struck := zp.Price.Struck(); struck != "" {
				cell = fmt.Sprintf("%s (antes %s)", cell, query.FormatCurrency(struck))
			}
			cells = append(cells, cell)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.Reference, a.Description, query.SectionName(a.Section), a.Family, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d artículos\n", len(results))
	return err
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Admin report inbox",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List received reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := a.db.ListReports(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFecha\tSupervisor\tZona\tTipo\tLeído")
			for _, r := range reports {
				read := "no"
				if r.Read {
					read = "sí"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Date, r.SupervisorName, r.ZoneFilter, r.Type, read)
			}
			return tw.Flush()
		},
	}

	var outDir string
	read := &cobra.Command{
		Use:   "read ID",
		Short: "Mark a report read and write its CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := a.db.ListReports(cmd.Context())
			if err != nil {
				return err
			}
			var found *internal.Report
			for i := range reports {
				if reports[i].ID == args[0] {
					found = &reports[i]
					break
				}
			}
			if found == nil {
				return fmt.Errorf("report not found: %s", args[0])
			}
			if err := a.db.MarkReportRead(cmd.Context(), found.ID); err != nil {
				return err
			}

			if outDir == "" {
				outDir = a.cfg.OutputDir
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, found.ID+"_"+query.ExportFileName(found.Type))
			if err := os.WriteFile(path, query.WithBOM(found.CSVContent), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "report %s file=%s\n", found.ID, path)
			return nil
		},
	}
	read.Flags().StringVar(&outDir, "out", "", "output directory (default OUTPUT_DIR)")

	unread := &cobra.Command{
		Use:   "unread",
		Short: "Count unread reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.db.UnreadReports(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	var submitOpts queryOptions
	submit := &cobra.Command{
		Use:   "submit",
		Short: "Send the filtered export to the report inbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			submitOpts.submit = true
			return runQuery(cmd, a, submitOpts)
		},
	}
	bindQueryFlags(submit, &submitOpts)

	cmd.AddCommand(submit, list, read, unread)
	return cmd
}
