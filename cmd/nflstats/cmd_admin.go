package main

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"nfl-projections-go/services"

	"github.com/spf13/cobra"
)

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Manage the dashboard admin credentials",
}

var adminHashCmd = &cobra.Command{
	Use:   "hash",
	Short: "Hash an admin password for ADMIN_PASSWORD_HASH",
	Long:  "Reads a password from stdin and prints its bcrypt hash.",
	Args:  cobra.NoArgs,
	RunE:  runAdminHash,
}

var adminMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint an admin token signed with JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE:  runAdminMint,
}

func init() {
	adminTokenCmd.AddCommand(adminHashCmd, adminMintCmd)
}

func runAdminHash(cmd *cobra.Command, args []string) error {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading password: %w", err)
	}
	hash, err := services.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", hash)
	return nil
}

func runAdminMint(cmd *cobra.Command, args []string) error {
	auth := services.NewAuthService(cfg.Auth.AdminPasswordHash, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	token, expires, err := auth.GenerateToken()
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
	return nil
}
