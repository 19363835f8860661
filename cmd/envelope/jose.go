package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/heliostechlabs/axis-test-enc/internal/logs"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwe"
	"github.com/heliostechlabs/axis-test-enc/pkg/jws"
)

func newEncryptCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt [payload]",
		Short: "Encrypt a JSON object as a JWE for the recipient",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}

			recipient, err := cfg.Recipient.Public()
			if err != nil {
				return fmt.Errorf("recipient: %w", err)
			}

			payload, err := readPayload(cmd, args)
			if err != nil {
				return err
			}

			kid, err := keyID(cfg.KeyIDs, recipient)
			if err != nil {
				return err
			}

			token, err := jwe.Encrypt(payload, recipient, cfg.KeyAlgorithm, cfg.ContentAlgorithm, jwe.WithKeyID(kid))
			if err != nil {
				return err
			}

			klog.Background().V(logs.Debug).Info("encrypted payload", "alg", cfg.KeyAlgorithm, "enc", cfg.ContentAlgorithm)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}

func newDecryptCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt [token]",
		Short: "Decrypt a JWE with the recipient private key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}

			recipient, err := cfg.Recipient.Private()
			if err != nil {
				return fmt.Errorf("recipient: %w", err)
			}

			token, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			kid, err := keyID(cfg.KeyIDs, recipient)
			if err != nil {
				return err
			}

			plaintext, err := jwe.DecryptBytes(token, recipient,
				jwe.WithKeyID(kid),
				jwe.WithAllowedAlgorithms(cfg.KeyAlgorithm, cfg.ContentAlgorithm),
			)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), plaintext)
		},
	}
}

func newSignCommand(o *options) *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "sign [payload]",
		Short: "Sign a payload as a JWS with the signer private key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}

			signer, err := cfg.Signer.Private()
			if err != nil {
				return fmt.Errorf("signer: %w", err)
			}

			payload, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			kid, err := keyID(cfg.KeyIDs, signer)
			if err != nil {
				return err
			}

			token, err := jws.Sign(payload, signer, cfg.SigningAlgorithm,
				jws.WithKeyID(kid),
				jws.WithContentType(contentType),
			)
			if err != nil {
				return err
			}

			klog.Background().V(logs.Debug).Info("signed payload", "alg", cfg.SigningAlgorithm)

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&contentType, "content-type", "", `Optional "cty" header parameter.`)

	return cmd
}

func newVerifyCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [token]",
		Short: "Verify a JWS with the signer public key and print its payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config()
			if err != nil {
				return err
			}

			signer, err := cfg.Signer.Public()
			if err != nil {
				return fmt.Errorf("signer: %w", err)
			}

			token, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			kid, err := keyID(cfg.KeyIDs, signer)
			if err != nil {
				return err
			}

			payload, err := jws.Verify(token, signer,
				jws.WithKeyID(kid),
				jws.WithAllowedAlgorithms(cfg.SigningAlgorithm),
			)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), payload)
			return err
		},
	}
}
