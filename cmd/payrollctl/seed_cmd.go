package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iota-uz/payroll-bot/modules/directory/services"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import the company structure from YAML unless departments already exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()
			seed, err := services.ParseSeedFile(f)
			if err != nil {
				return err
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			seeder := e.app.Service(services.SeedService{}).(*services.SeedService)
			res, err := seeder.Seed(e.ctx(cmd.Context()), seed)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "departments already exist, nothing imported")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d departments and %d employees\n", res.Departments, res.Employees)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/seed.yaml", "seed YAML file")
	return cmd
}
