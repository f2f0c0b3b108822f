package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-fuel-audit/internal/fuel"
	"github.com/ukydev/fleet-fuel-audit/internal/models"
)

var (
	alertID      int64
	reconcileDay string
	outputFormat string

	otp     string
	payment string
	amount  string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare the latest fuel log of an alert with GPS fillings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		merged, err := runReconcile(cmd.Context(), a, alertID, reconcileDay)
		if err != nil {
			return err
		}
		return writeMerged(cmd.OutOrStdout(), merged, outputFormat)
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Reconcile an alert and record the operator decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		merged, err := runReconcile(cmd.Context(), a, alertID, reconcileDay)
		if err != nil {
			return err
		}

		input := models.OperatorInput{OTP: otp, Payment: payment, Amount: models.FlexString(amount)}
		record, err := a.submitter.Submit(cmd.Context(), &merged.AlertContext, merged, input)
		if err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"alert_id": record.AlertID,
			"status":   record.Status,
		}).Info("Decision recorded")
		return writeJSON(cmd.OutOrStdout(), record)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List decisions recorded for an alert (mongo sink only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		records, err := runHistory(cmd.Context(), a, alertID)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), records)
	},
}

func runHistory(ctx context.Context, a *app, id int64) ([]models.DecisionRecord, error) {
	if a.journal == nil {
		return nil, eris.New("decision history requires sink.driver=mongo")
	}
	if id <= 0 {
		return nil, eris.New("--alert must be a positive alert id")
	}
	return a.journal.History(ctx, id)
}

func runReconcile(ctx context.Context, a *app, id int64, date string) (models.MergedFuelData, error) {
	if id <= 0 {
		return models.MergedFuelData{}, eris.New("--alert must be a positive alert id")
	}
	window, err := a.window(date)
	if err != nil {
		return models.MergedFuelData{}, err
	}
	return a.engine.Merge(ctx, id, window)
}

func writeMerged(w io.Writer, m models.MergedFuelData, format string) error {
	switch format {
	case "json", "":
		return writeJSON(w, m)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Alert\t%d\n", m.AlertID)
		fmt.Fprintf(tw, "Vehicle\t%s\n", m.AmbulanceNumber)
		fmt.Fprintf(tw, "Service ID\t%s\n", m.SysServiceID)
		fmt.Fprintf(tw, "Fuel logged at\t%s\n", fuel.FormatDateTime(m.FuelDateTime))
		fmt.Fprintf(tw, "GPS filling at\t%s\n", fuel.FormatDateTime(m.GpsTime))
		fmt.Fprintf(tw, "Software reading\t%.2f L\n", m.SoftwareReading)
		fmt.Fprintf(tw, "GPS filling\t%.2f L\n", m.GpsFilling)
		if m.GpsPosition != nil {
			fmt.Fprintf(tw, "GPS position\t%.6f, %.6f\n", m.GpsPosition.Lat, m.GpsPosition.Lon)
		} else {
			fmt.Fprintf(tw, "GPS position\t-\n")
		}
		fmt.Fprintf(tw, "Difference\t%s\n", m.Difference)
		fmt.Fprintf(tw, "Amount\t%s\n", m.Amount)
		fmt.Fprintf(tw, "Status\t%s\n", m.Status)
		return tw.Flush()
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, c := range []*cobra.Command{reconcileCmd, submitCmd} {
		c.Flags().Int64Var(&alertID, "alert", 0, "alert id")
		c.Flags().StringVar(&reconcileDay, "date", "", "day to reconcile, YYYY-MM-DD (default today)")
		c.MarkFlagRequired("alert")
	}
	reconcileCmd.Flags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or table")

	submitCmd.Flags().StringVar(&otp, "otp", "", "one-time password confirming the fill")
	submitCmd.Flags().StringVar(&payment, "payment", "", "payment method")
	submitCmd.Flags().StringVar(&amount, "amount", "", "amount paid")

	historyCmd.Flags().Int64Var(&alertID, "alert", 0, "alert id")
	historyCmd.MarkFlagRequired("alert")

	rootCmd.AddCommand(reconcileCmd, submitCmd, historyCmd)
}
