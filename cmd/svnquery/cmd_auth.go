package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svnquery/svnquery/internal/obfuscate"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth <username> <password>",
		Short: "Pack credentials into an obfuscated config token",
		Long: `Pack a username/password pair into a single scrambled token suitable for
the repository.credentials config key. The token keeps credentials out of
casual view; it is not encryption.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runAuth,
	}
	cmd.Flags().Bool("decode", false, "Treat the first argument as a token and decode it")
	return cmd
}

func runAuth(cmd *cobra.Command, args []string) error {
	if decode, _ := cmd.Flags().GetBool("decode"); decode {
		user, pass, err := obfuscate.Decode(args[0])
		if err != nil {
			return err
		}
		writeOutput(cmd, map[string]string{"username": user, "password": pass}, func() {
			fmt.Printf("  %susername:%s %s\n", cyan, reset, user)
			fmt.Printf("  %spassword:%s %s\n", cyan, reset, pass)
		})
		return nil
	}

	if len(args) != 2 {
		return fmt.Errorf("encoding requires <username> <password>")
	}

	token := obfuscate.Encode(args[0], args[1])
	writeOutput(cmd, map[string]string{"credentials": token}, func() {
		fmt.Printf("%s✓%s Add to your config file:\n\n", green, reset)
		fmt.Printf("  repository:\n")
		fmt.Printf("    credentials: %s\n", token)
	})
	return nil
}
