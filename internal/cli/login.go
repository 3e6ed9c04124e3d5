package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-client/internal/auth"
)

var (
	loginName     string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and print an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginName == "" || loginPassword == "" {
			return fmt.Errorf("--name and --password are required")
		}
		grant, err := auth.Login(context.Background(), newRemoteClient(), loginName, loginPassword)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (%s)\n", grant.Actor.Name, grant.Actor.Role)
		fmt.Printf("export HELPDESK_TOKEN=%s\n", grant.Token)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginName, "name", "", "login name")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password")
}
