package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opswatch/console/internal/api"
	"github.com/opswatch/console/internal/auth"
	"github.com/opswatch/console/internal/backup"
)

var (
	flagBackupFile     string
	flagBackupPassword string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export, import and decrypt encrypted configuration backups",
}

var backupExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the company backup and encrypt it to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := loggedInClient()
		if err != nil {
			return err
		}
		plain, err := client.ExportBackup()
		if err != nil {
			return err
		}
		sealed, err := backup.Encrypt(plain, flagBackupPassword)
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagBackupFile, sealed, 0o600); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", flagBackupFile)
		return nil
	},
}

var backupImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Decrypt a backup file and upload it to the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := loggedInClient()
		if err != nil {
			return err
		}
		plain, err := readBackupFile()
		if err != nil {
			return err
		}
		return client.ImportBackup(plain)
	},
}

var backupDecryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a backup file to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, err := readBackupFile()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(plain)
		return err
	},
}

// readBackupFile loads the --file argument, decrypting it when it carries
// the backup envelope.
func readBackupFile() ([]byte, error) {
	data, err := os.ReadFile(flagBackupFile)
	if err != nil {
		return nil, err
	}
	if !backup.IsEncrypted(data) {
		return data, nil
	}
	return backup.Decrypt(data, flagBackupPassword)
}

func loggedInClient() (*api.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	authCtx := &auth.Context{}
	if err := authCtx.Load(cfg.Session.Path); err != nil {
		return nil, err
	}
	if !authCtx.LoggedIn() {
		return nil, fmt.Errorf("not logged in; run 'opswatch login' first")
	}
	return api.New(cfg.Server.URL, authCtx, nil), nil
}

func init() {
	backupCmd.PersistentFlags().StringVarP(&flagBackupFile, "file", "f", "backup.json.enc", "backup file path")
	backupCmd.PersistentFlags().StringVarP(&flagBackupPassword, "password", "p", "", "encryption password")
	backupCmd.AddCommand(backupExportCmd, backupImportCmd, backupDecryptCmd)
	rootCmd.AddCommand(backupCmd)
}
