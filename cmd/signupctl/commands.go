package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	pgauth "github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/authprovider"
	"github.com/Overland-East-Bay/activity-signup-api/internal/adapters/postgres/migrations"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
	"github.com/Overland-East-Bay/activity-signup-api/internal/domain/identity"
)

// skipConfig replaces the root pre-run for commands that need no configuration.
func skipConfig(*cobra.Command, []string) error { return nil }

// loginID validates name and suffix and derives the login id.
func loginID(name, suffix string) (domain.LoginID, error) {
	name = domain.NormalizeHumanName(name)
	if name == "" {
		return "", errors.New("name must be non-empty")
	}
	if !identity.ValidSuffix(suffix) {
		return "", fmt.Errorf("id suffix %q must be exactly 4 digits", suffix)
	}
	return domain.LoginID(identity.Address(name, suffix)), nil
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "encode <name> <idSuffix>",
		Short:             "Print the login id derived from a name and ID suffix",
		Args:              cobra.ExactArgs(2),
		PersistentPreRunE: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loginID(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "decode <loginId>",
		Short:             "Print the display name and ID suffix recovered from a login id",
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "decoded: %s\n", identity.Decode(args[0]))
			fmt.Fprintf(out, "name:    %s\n", identity.DisplayName(args[0]))
			fmt.Fprintf(out, "suffix:  %s\n", identity.IDSuffix(args[0]))
			return nil
		},
	}
}

func newMigrateCmd(c *cli) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back database migrations",
		Long:      "Apply (up) or roll back (down) the embedded schema migrations against database.url.\nWith --steps 0, up applies everything and down rolls back everything.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Database.URL == "" {
				return errNeedsDatabase
			}
			if steps < 0 {
				return fmt.Errorf("--steps must be >= 0, got %d", steps)
			}
			var (
				res migrations.Result
				err error
			)
			switch strings.ToLower(args[0]) {
			case "up":
				res, err = migrations.Up(c.cfg.Database.URL, steps)
			case "down":
				res, err = migrations.Down(c.cfg.Database.URL, steps)
			default:
				return fmt.Errorf("unknown direction %q (expected up or down)", args[0])
			}
			if err != nil {
				return err
			}
			if res.NoChange {
				fmt.Fprintf(cmd.OutOrStdout(), "no change; schema at version %d\n", res.Version)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty=%t)\n", res.Version, res.Dirty)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 0, "number of migrations to apply or roll back (0 = all)")
	return cmd
}

func newGrantAdminCmd(c *cli) *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "grant-admin <name> <idSuffix>",
		Short: "Grant (or with --revoke, remove) administrator rights",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loginID(args[0], args[1])
			if err != nil {
				return err
			}
			perms, closer, err := c.permissions(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			if err := perms.SetAdmin(cmd.Context(), id, !revoke); err != nil {
				return fmt.Errorf("updating permissions: %w", err)
			}
			verb := "granted"
			if revoke {
				verb = "revoked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s for %s\n", verb, id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove administrator rights instead of granting them")
	return cmd
}

func newCreateAccountCmd(c *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "create-account <name> <idSuffix>",
		Short: "Create a password account in the Postgres backend",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := loginID(args[0], args[1])
			if err != nil {
				return err
			}
			if password == "" {
				return errors.New("--password is required")
			}
			provider, closer, err := c.accounts(cmd.Context())
			if err != nil {
				return err
			}
			defer closer()
			userID, err := provider.CreateAccount(cmd.Context(), id, password)
			if errors.Is(err, pgauth.ErrAccountExists) {
				return fmt.Errorf("an account for %s already exists", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created account %s (user id %s)\n", id, userID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	return cmd
}
