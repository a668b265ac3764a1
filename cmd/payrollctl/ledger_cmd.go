package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dirservices "github.com/iota-uz/payroll-bot/modules/directory/services"
	"github.com/iota-uz/payroll-bot/modules/ledger/domain/entities/accrual"
	ledgerservices "github.com/iota-uz/payroll-bot/modules/ledger/services"
	"github.com/iota-uz/payroll-bot/pkg/money"
)

func newBalanceCmd() *cobra.Command {
	var employeeID int64
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print an employee's balance and per-kind totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			ctx := e.ctx(cmd.Context())

			directory := e.app.Service(dirservices.DirectoryService{}).(*dirservices.DirectoryService)
			ledger := e.app.Service(ledgerservices.LedgerService{}).(*ledgerservices.LedgerService)
			emp, err := directory.GetEmployee(ctx, employeeID)
			if err != nil {
				return err
			}
			s, err := ledger.Summary(ctx, emp.ID)
			if err != nil {
				return err
			}
			format := money.NewFormatter(e.conf.Currency).Format
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", emp.FullName, emp.Position)
			for _, k := range accrual.Kinds {
				fmt.Fprintf(out, "  %-10s %s\n", k, format(s.Totals[k]))
			}
			fmt.Fprintf(out, "  %-10s %s\n", "balance", format(s.Balance))
			return nil
		},
	}
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "employee id")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		employeeID int64
		period     string
		out        string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write an employee's ledger to an XLSX file",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			ctx := e.ctx(cmd.Context())

			directory := e.app.Service(dirservices.DirectoryService{}).(*dirservices.DirectoryService)
			exporter := e.app.Service(ledgerservices.ExportService{}).(*ledgerservices.ExportService)
			emp, err := directory.GetEmployee(ctx, employeeID)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			s, err := exporter.Export(ctx, emp.ID, emp.FullName, accrual.Period(period), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s, balance %s\n", out, money.NewFormatter(e.conf.Currency).Format(s.Balance))
			return nil
		},
	}
	cmd.Flags().Int64Var(&employeeID, "employee", 0, "employee id")
	cmd.Flags().StringVar(&period, "period", "", "limit to one period, YYYY-MM")
	cmd.Flags().StringVar(&out, "out", "ledger.xlsx", "output file")
	_ = cmd.MarkFlagRequired("employee")
	return cmd
}
