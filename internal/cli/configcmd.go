package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := settingsPath()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"config":     path,
					"server_url": serverURL(),
					"format":     flagFormat,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Server: %s\n", serverURL())
			fmt.Fprintf(cmd.OutOrStdout(), "Format: %s\n", flagFormat)
			return nil
		},
	}

	cmd.AddCommand(newConfigSetServerCmd(), newConfigSetFormatCmd())

	return cmd
}

func newConfigSetServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-server <url>",
		Short: "Set the API server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("invalid server URL: %s", args[0])
			}
			return updateSettings(cmd, func(s *settings) { s.ServerURL = args[0] }, "Server set to "+args[0])
		},
	}
}

func newConfigSetFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-format <text|json>",
		Short: "Set the default output format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(args[0]) {
				return fmt.Errorf("invalid format: %s (must be text or json)", args[0])
			}
			return updateSettings(cmd, func(s *settings) { s.Format = args[0] }, "Default format set to "+args[0])
		},
	}
}

func updateSettings(cmd *cobra.Command, change func(*settings), done string) error {
	s, err := readSettings()
	if err != nil {
		return err
	}
	change(&s)
	if err := writeSettings(s); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}
