package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	domain "github.com/donaldgifford/secondhand-client/pkg/types"
)

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Long: "Log in with your email and password. The returned token is stored in\n" +
			"the session file and sent with every protected request until logout.",
		Example: `  shc login --email alice@example.com
  shc login --email alice@example.com --password secret`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				if password, err = readLine(a.in, a.out, "Password: "); err != nil {
					return err
				}
			}

			res, err := a.api.Login(cmd.Context(), domain.Credentials{Email: email, Password: password})
			if err != nil {
				return fmt.Errorf("login failed: %s: %w", domain.Message(err), err)
			}
			if err := a.gate.Login(res.Token); err != nil {
				return err
			}

			name := email
			if res.User != nil && res.User.Username != "" {
				name = res.User.Username
			}
			a.printf("Logged in as %s.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

func registerCmd() *cobra.Command {
	var reg domain.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Example: `  shc register --email alice@example.com --username alice --password secret1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if reg.Email == "" || reg.Username == "" || reg.Password == "" {
				return errors.New("--email, --username and --password are required")
			}

			res, err := a.api.Register(cmd.Context(), reg)
			if err != nil {
				return fmt.Errorf("registration failed: %s: %w", domain.Message(err), err)
			}
			if res.Token == "" {
				a.printf("Registered %s. Run 'shc login' to sign in.\n", reg.Username)
				return nil
			}
			if err := a.gate.Login(res.Token); err != nil {
				return err
			}
			a.printf("Registered and logged in as %s.\n", reg.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&reg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&reg.Username, "username", "", "public username")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password (6 to 50 characters)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.gate.Logout(); err != nil {
				return err
			}
			a.printf("Logged out.\n")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			claims, err := a.gate.Claims()
			if err != nil {
				a.printf("Logged in (token details unavailable: %v).\n", err)
				return nil
			}

			if jsonOutput() {
				return outputJSON(a.out, claims)
			}
			tw := newTabWriter(a.out)
			tw.writef("User ID:\t%d\n", claims.UserID)
			if !claims.IssuedAt.IsZero() {
				tw.writef("Issued:\t%s\n", claims.IssuedAt.Format(time.RFC3339))
			}
			if !claims.ExpiresAt.IsZero() {
				state := "valid"
				if claims.Expired(time.Now()) {
					state = "expired"
				}
				tw.writef("Expires:\t%s (%s)\n", claims.ExpiresAt.Format(time.RFC3339), state)
			}
			tw.writef("Session file:\t%s\n", a.cfg.Session.StorePath)
			return tw.finish()
		},
	}
}

// readLine prints prompt to out and returns the next trimmed line from in.
func readLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return "", err
	}
	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
