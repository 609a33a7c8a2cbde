package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/notehub/internal/auth"
	"github.com/idilsaglam/notehub/internal/ui"
)

func newAuthCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the NoteHub access token",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return usagef("usage: notehub auth <login|logout|status|whoami>")
		},
	}
	cmd.AddCommand(newLoginCmd(e), newLogoutCmd(e), newStatusCmd(e), newWhoAmICmd(e))
	return cmd
}

func newLoginCmd(e *env) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a token in the credentials file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				fmt.Fprint(e.streams.Out, "Paste your token: ")
				line, err := bufio.NewReader(e.streams.In).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if err := e.store.Save(token, nil); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK(e.streams.Out, "logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token to store (read from stdin when omitted)")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the credentials file",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, _ := e.store.Resolve(e.cfg.API.Token)
			if ti != nil && ti.Source != auth.SourceFile {
				ui.OK(e.streams.Out, fmt.Sprintf("token is provided by %s (nothing to delete)", describeSource(ti.Source)))
				return nil
			}
			if err := e.store.Delete(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(e.streams.Out, "logged out")
			return nil
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := e.store.Resolve(e.cfg.API.Token)
			if err != nil {
				return err
			}
			out := e.streams.Out
			if ti == nil {
				ui.Muted(out, "not logged in")
				fmt.Fprintln(out, "Run: notehub auth login")
				return nil
			}
			fmt.Fprintf(out, "source: %s\n", describeSource(ti.Source))
			if ti.ExpiresAt != nil {
				fmt.Fprintf(out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
			} else {
				fmt.Fprintln(out, "expires: (unknown)")
			}
			fmt.Fprintf(out, "env override: %s\n", auth.EnvToken)
			return nil
		},
	}
}

// whoami decodes a JWT locally without verifying it; opaque tokens only
// report their source.
func newWhoAmICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the claims of the current token",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ti, err := e.store.Resolve(e.cfg.API.Token)
			if err != nil {
				return err
			}
			if ti == nil {
				return usagef("not logged in. Run: notehub auth login")
			}
			out := e.streams.Out
			claims, ok := auth.Claims(ti.Token)
			if !ok {
				fmt.Fprintln(out, "Opaque token (cannot introspect locally).")
				fmt.Fprintf(out, "source: %s\n", describeSource(ti.Source))
				return nil
			}
			names := make([]string, 0, len(claims))
			for k := range claims {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				v, _ := json.Marshal(claims[k])
				fmt.Fprintf(out, "%s: %s\n", k, v)
			}
			return nil
		},
	}
}

func describeSource(source string) string {
	switch source {
	case auth.SourceEnv:
		return "environment (" + auth.EnvToken + ")"
	case auth.SourceConfig:
		return "config file (api.token)"
	default:
		return "credentials file"
	}
}
