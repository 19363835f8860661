package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

func newSealCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "seal [payload]",
		Short: "Encrypt a JSON object for the recipient, then sign it",
		Long: `Seal encrypts a JSON object as a JWE with the recipient public key and
signs the JWE as the payload of a JWS with the signer private key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}

			recipient, err := cfg.Recipient.Public()
			if err != nil {
				return fmt.Errorf("recipient: %w", err)
			}

			signer, err := cfg.Signer.Private()
			if err != nil {
				return fmt.Errorf("signer: %w", err)
			}

			payload, err := readPayload(cmd, args)
			if err != nil {
				return err
			}

			composer, err := cfg.Composer(klog.Background())
			if err != nil {
				return err
			}

			token, err := composer.EncryptThenSign(cmd.Context(), payload, recipient, signer)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

func newOpenCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "open [token]",
		Short: "Verify a sealed envelope, then decrypt it",
		Long: `Open verifies the outer JWS with the signer public key and, only if the
signature is valid, decrypts the inner JWE with the recipient private key.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}

			signer, err := cfg.Signer.Public()
			if err != nil {
				return fmt.Errorf("signer: %w", err)
			}

			recipient, err := cfg.Recipient.Private()
			if err != nil {
				return fmt.Errorf("recipient: %w", err)
			}

			token, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			composer, err := cfg.Composer(klog.Background())
			if err != nil {
				return err
			}

			payload, err := composer.VerifyThenDecrypt(cmd.Context(), token, signer, recipient)
			if err != nil {
				return err
			}

			return writePayload(cmd.OutOrStdout(), payload)
		},
	}
}
