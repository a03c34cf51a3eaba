package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/colorsort/internal/api/request"
	"github.com/mcoot/colorsort/internal/api/response"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account commands",
	}

	cmd.AddCommand(newAccountCreateCmd())
	cmd.AddCommand(newAccountLoginCmd())

	return cmd
}

func accountRun(path string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("COLORSORT_PASSWORD")
		}
		if password == "" {
			return errors.New("--password or COLORSORT_PASSWORD is required")
		}

		// Account failures carry the flat error body, so Client.Do reports them
		var result response.AccountResult
		req := request.AccountRequest{Username: args[0], Password: password}
		if err := client.Post(path, req, &result); err != nil {
			return err
		}

		NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
		return nil
	}
}

func newAccountCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(1),
		RunE:  accountRun("/api/v1/accounts"),
	}
	cmd.Flags().String("password", "", "Password (env: COLORSORT_PASSWORD)")
	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Check account credentials",
		Args:  cobra.ExactArgs(1),
		RunE:  accountRun("/api/v1/accounts/login"),
	}
	cmd.Flags().String("password", "", "Password (env: COLORSORT_PASSWORD)")
	return cmd
}
