package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
)

var errViolations = errors.New("integrity audit found violations")

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check Book/Course and User/Listing references",
		Long: `audit reads every document and reports Book/Course links present on one
side only and listings missing from their owner. It never writes. The exit
status is 1 when anything is reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			report, err := a.services(store, nil, nil, nil).Audit.Run(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if !report.OK() {
				return errViolations
			}
			return nil
		},
	}
}
