package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tarifario/internal/connectors"
	"tarifario/internal/ingest"
	"tarifario/internal/listener"
	"tarifario/internal/pipeline"
)

func newMailCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "mail", Short: "Catalog exports received by mail"}

	var (
		provider string
		label    string
		max      int
	)
	fetch := &cobra.Command{
		Use:   "fetch",
		Short: "Download new messages into the mail ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := connectors.NormalizeProvider(provider)
			if err != nil {
				return err
			}
			conn, err := listener.ProviderConnectors(a.cfg)(cmd.Context(), p)
			if err != nil {
				return err
			}
			res, err := connectors.NewFetchService(a.db, a.cfg.RawMailDir, conn, a.logger).FetchAndStore(cmd.Context(), label, max)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mail fetch done provider=%s fetched=%d stored=%d\n", p, res.Fetched, res.Stored)
			return nil
		},
	}
	fetch.Flags().StringVar(&provider, "provider", connectors.ProviderIMAP, "gmail|imap")
	fetch.Flags().StringVar(&label, "label", "INBOX", "mailbox or label")
	fetch.Flags().IntVar(&max, "max", 50, "max messages")

	var (
		procProvider string
		messageID    string
		batch        int
	)
	process := &cobra.Command{
		Use:   "process",
		Short: "Import the catalog attachments of fetched messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			processor := pipeline.NewProcessingService(a.db, ingest.NewService(a.db, a.logger), a.logger)
			if strings.TrimSpace(messageID) != "" {
				res, err := processor.ProcessByProviderMessageID(cmd.Context(), procProvider, messageID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "processed mail id=%d status=%s rows=%d\n", res.MailID, res.Status, res.Rows)
				return nil
			}
			mails, rows, err := processor.ProcessPending(cmd.Context(), batch, procProvider)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed pending mails=%d rows=%d\n", mails, rows)
			return nil
		},
	}
	process.Flags().StringVar(&procProvider, "provider", "", "only this provider (default all)")
	process.Flags().StringVar(&messageID, "message-id", "", "process one message")
	process.Flags().IntVar(&batch, "batch", 20, "batch size")

	var once bool
	listen := &cobra.Command{
		Use:   "listen",
		Short: "Poll the mailbox and import exports as they arrive",
		RunE: func(cmd *cobra.Command, args []string) error {
			processor := pipeline.NewProcessingService(a.db, ingest.NewService(a.db, a.logger), a.logger)
			svc := listener.NewService(a.db, processor, a.cfg, a.logger)
			if !once {
				return svc.Run(cmd.Context())
			}
			res, err := svc.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listener cycle fetched=%d stored=%d processed=%d rows=%d\n", res.Fetched, res.Stored, res.Processed, res.Rows)
			return nil
		},
	}
	listen.Flags().BoolVar(&once, "once", false, "run a single cycle and exit")

	cmd.AddCommand(fetch, process, listen)
	return cmd
}
