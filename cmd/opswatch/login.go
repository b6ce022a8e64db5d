package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opswatch/console/internal/api"
	"github.com/opswatch/console/internal/auth"
)

var flagPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate against the backend and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		password := flagPassword
		if password == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return err
			}
			password = strings.TrimRight(line, "\r\n")
		}

		authCtx := &auth.Context{}
		client := api.New(cfg.Server.URL, authCtx, nil)
		if err := client.Login(args[0], password); err != nil {
			return err
		}
		if err := authCtx.Save(cfg.Session.Path); err != nil {
			return err
		}
		co := "none"
		if cs := authCtx.Companies(); len(cs) > 0 {
			co = cs[0].Name
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (company: %s)\n", args[0], co)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		authCtx := &auth.Context{}
		authCtx.Logout()
		return authCtx.Save(cfg.Session.Path)
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagPassword, "password", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}
