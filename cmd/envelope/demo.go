package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/heliostechlabs/axis-test-enc/pkg/envelope"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwe"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

// demoMessage is the payload sealed by the demo command.
const demoMessage = "This is a secret message."

func newDemoCommand(o *options) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Seal and open a sample message with a freshly generated key",
		Long: `Demo generates an RSA key and a self-signed certificate for it, seals
{"message":"This is a secret message."} for the certificate and signs it
with the key, then opens the result again. Finally it shows that a token
with one character appended is rejected before any decryption.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}

			cfg, err := o.config()
			if err != nil {
				return err
			}

			_, private, err := keyutil.NewRSAKeyPair(jwa.MinRSAKeyBits)
			if err != nil {
				return err
			}

			certificatePEM, err := keyutil.NewSelfSignedCertificate(private, "envelope demo", time.Hour)
			if err != nil {
				return err
			}

			certificate, err := keyutil.Load(certificatePEM, keyutil.Certificate)
			if err != nil {
				return err
			}
			key := keyutil.FromRSAPrivateKey(private)

			composer, err := cfg.Composer(klog.Background())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			token, err := composer.EncryptThenSign(cmd.Context(), jwe.Payload{"message": demoMessage}, certificate, key)
			if err != nil {
				return err
			}
			color.New(color.FgCyan).Fprint(out, "Signed and encrypted payload: ")
			fmt.Fprintln(out, token)

			payload, err := composer.VerifyThenDecrypt(cmd.Context(), token, certificate, key)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprint(out, "Decrypted and verified payload: ")
			if err := writePayload(out, payload); err != nil {
				return err
			}

			_, err = composer.VerifyThenDecrypt(cmd.Context(), token+"x", certificate, key)
			var verificationErr *envelope.VerificationError
			if !errors.As(err, &verificationErr) {
				return fmt.Errorf("tampered token was not rejected by verification: %v", err)
			}
			color.New(color.FgYellow).Fprint(out, "Tampered payload rejected: ")
			fmt.Fprintln(out, err)

			return nil
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output.")

	return cmd
}
