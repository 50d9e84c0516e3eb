package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budde25/nxcloud/internal/credentials"
	"github.com/budde25/nxcloud/internal/logging"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Display the account status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := app.Creds.Read()
			if err != nil {
				if !errors.Is(err, credentials.ErrNotLoggedIn) {
					logging.S().Debugf("credential read failed: %v", err)
				}
				fmt.Fprintln(app.Stdout, "Not logged in")
				return nil
			}
			fmt.Fprintf(app.Stdout, "Logged in to server '%s' as user '%s'\n",
				creds.Server, creds.Username)
			return nil
		},
	}
}

func newLoginCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <server> <username> [password]",
		Short: "Log in to your NextCloud server",
		Long: "Log in to your NextCloud server. Use an app password rather than\n" +
			"your account password. When the password argument is omitted it is\n" +
			"prompted for without echo.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 3 {
				password = args[2]
			} else {
				var err error
				if password, err = app.promptPassword(); err != nil {
					return fmt.Errorf("read password: %w", err)
				}
			}

			creds, err := credentials.Parse(args[1], password, args[0])
			if err != nil {
				return err
			}

			if err := app.NewTransport(creds).VerifyIdentity(cmd.Context()); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := app.Creds.Write(creds); err != nil {
				return err
			}

			fmt.Fprintln(app.Stdout, "Login successful")
			return nil
		},
	}
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of your NextCloud server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Creds.Delete(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}
			fmt.Fprintln(app.Stdout, "Logout successful")
			return nil
		},
	}
}
