package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgerengine/internal/accounts"
	"github.com/cleared-dev/ledgerengine/internal/model"
)

func newAccountsCommand(opts *globalOptions) *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Chart of accounts",
	}
	accountsCmd.AddCommand(
		newAccountsListCommand(opts),
		newAccountsSyncCommand(opts),
	)
	return accountsCmd
}

func newAccountsSyncCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Apply edits from accounts/chart-of-accounts.csv to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				chart, err := accounts.Load(a.root)
				if err != nil {
					return err
				}
				accts := chart.All()
				for _, acct := range accts {
					if _, err := a.db.Upsert(cmd.Context(), acct); err != nil {
						return fmt.Errorf("syncing account %s: %w", acct.Code, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d accounts\n", len(accts))
				return nil
			})
		},
	}
}

func newAccountsListCommand(opts *globalOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(a *app) error {
				filter := model.Filter{}
				if role != "" {
					filter[model.AttrUsageRole] = role
				}
				accts, err := a.db.FindByAttributes(cmd.Context(), filter)
				if err != nil {
					return err
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "CODE\tNAME\tTYPE\tACTIVE\tPLACEHOLDER\tATTRIBUTES")
				for _, acct := range accts {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\t%s\n",
						acct.Code, acct.Name, acct.Type, acct.Active, acct.Placeholder,
						model.FormatAttributes(acct.Attributes))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "only accounts with this usage role")
	return cmd
}
