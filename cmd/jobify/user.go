// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Jobify Contributors

package main

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Hananem/Jobify-backend/internal/config"
	"github.com/Hananem/Jobify-backend/internal/httpapi"
	"github.com/Hananem/Jobify-backend/internal/identity"
)

// storeOpener opens the user store for the user commands; tests replace it.
var storeOpener = openStore

// NewUserCmd creates the user administration command group.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Administer user accounts",
	}
	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserSetPasswordCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var username, email string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Long: `Create a user account directly in the configured store. The password is
prompted for on a terminal, or read from the first line of stdin otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, "Password: ")
			if err != nil {
				return err
			}
			if err := checkPassword(password); err != nil {
				return err
			}
			return withUserStore(cmd, func(ctx context.Context, cfg *config.Config, users identity.UserStore) error {
				signer, err := identity.NewJWTSigner([]byte(cfg.Auth.JWTSecret))
				if err != nil {
					return err
				}
				creds, err := identity.NewCredentialService(users, identity.NewArgon2idHasher(), signer)
				if err != nil {
					return err
				}
				res, err := creds.Register(ctx, username, email, password)
				if err != nil {
					return err
				}
				cmd.Printf("Created user %s (%s)\n", res.User.ID, res.User.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username (required)")
	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newUserSetPasswordCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "set-password",
		Short: "Replace a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd, "New password: ")
			if err != nil {
				return err
			}
			if err := checkPassword(password); err != nil {
				return err
			}
			return withUserStore(cmd, func(ctx context.Context, _ *config.Config, users identity.UserStore) error {
				user, err := users.FindByEmail(ctx, email)
				if err != nil {
					if errors.Is(err, identity.ErrNotFound) {
						return oops.Code(identity.CodeUserNotFound).With("email", email).Errorf("no user with email %q", email)
					}
					return err
				}
				merger, err := identity.NewProfileMerger(identity.NewArgon2idHasher(), nil)
				if err != nil {
					return err
				}
				profiles, err := identity.NewUserService(users, merger, nil)
				if err != nil {
					return err
				}
				if _, err := profiles.Update(ctx, user.ID, identity.ProfilePatch{Password: &password}); err != nil {
					return err
				}
				cmd.Printf("Password updated for %s\n", user.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address of the user (required)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// withUserStore loads configuration, opens the store and runs fn.
func withUserStore(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, users identity.UserStore) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))

	users, closeStore, err := storeOpener(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}
	return fn(ctx, cfg, users)
}

func checkPassword(password string) error {
	if len(password) < httpapi.MinPasswordLength {
		return oops.Code("PASSWORD_TOO_SHORT").Errorf("password must be at least %d characters", httpapi.MinPasswordLength)
	}
	return nil
}

// readPassword prompts twice on a terminal. Otherwise it reads the first
// line of stdin so the command can be scripted.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return promptPassword(cmd, int(f.Fd()), prompt)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptPassword(cmd *cobra.Command, fd int, prompt string) (string, error) {
	cmd.PrintErr(prompt)
	first, err := term.ReadPassword(fd)
	cmd.PrintErrln()
	if err != nil {
		return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
	}
	cmd.PrintErr("Confirm: ")
	second, err := term.ReadPassword(fd)
	cmd.PrintErrln()
	if err != nil {
		return "", oops.Code("PASSWORD_READ_FAILED").Wrap(err)
	}
	if string(first) != string(second) {
		return "", oops.Code("PASSWORD_MISMATCH").Errorf("passwords do not match")
	}
	return string(first), nil
}
