package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AdvaitShete/Hospital-Mangement-System/internal/platform/sandbox"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo data into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg sandbox.SeedConfig
			cfg.ExtraPatients, _ = cmd.Flags().GetInt("patients")
			cfg.BillsPerPatient, _ = cmd.Flags().GetInt("bills")
			cfg.Seed, _ = cmd.Flags().GetInt64("seed")

			ctx := context.Background()
			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.seeder.Seed(ctx, cfg)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "Store already has patients; nothing seeded.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d patient(s), %d medicine(s), %d appointment(s), %d bill(s).\n",
				res.Patients, res.Medicines, res.Appointments, res.Bills)
			return nil
		},
	}
	cmd.Flags().Int("patients", 0, "Synthetic patients to add on top of the demo records")
	cmd.Flags().Int("bills", 0, "Bills to create for each synthetic patient")
	cmd.Flags().Int64("seed", 0, "Random seed for synthetic data (0 = time based)")
	return cmd
}
