package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GregMSThompson/widget-dashboard/internal/bootstrap"
	"github.com/GregMSThompson/widget-dashboard/internal/crypto"
	"github.com/GregMSThompson/widget-dashboard/internal/store"
)

var TokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the plugin gateway token",
}

var encryptTokenCmd = &cobra.Command{
	Use:   "encrypt TOKEN",
	Short: "Encrypt a gateway token with Cloud KMS for PLUGINTOKENCIPHER",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyName, _ := cmd.Flags().GetString("kms-key")
		if keyName == "" {
			return errors.New("--kms-key is required")
		}
		client, err := bootstrap.InitKMS(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		cipher, err := crypto.NewKMS(client, keyName).KmsEncrypt(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cipher)
		return nil
	},
}

var storeTokenCmd = &cobra.Command{
	Use:   "store TOKEN",
	Short: "Add the gateway token as a new Secret Manager version for PLUGINTOKENSECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		secret, _ := cmd.Flags().GetString("secret")
		if project == "" || secret == "" {
			return errors.New("--project and --secret are required")
		}
		client, err := bootstrap.InitSecretManager(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Close()

		if err := store.NewGatewayTokenStore(client, project, secret).StoreToken(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored new version of %s\n", secret)
		return nil
	},
}

func init() {
	encryptTokenCmd.Flags().String("kms-key", "", "KMS key name (projects/.../cryptoKeys/...)")
	storeTokenCmd.Flags().String("project", "", "GCP project id")
	storeTokenCmd.Flags().String("secret", "plugin-gateway-token", "Secret Manager secret id")
	TokenCmd.AddCommand(encryptTokenCmd, storeTokenCmd)
}
