package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/heliostechlabs/axis-test-enc/internal/config"
	"github.com/heliostechlabs/axis-test-enc/internal/logs"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
)

// envPrefix is prepended to upper-cased flag names to find the
// environment variable used when a flag is not given.
const envPrefix = "ENVELOPE_"

// options are the flags shared by every subcommand. Non-empty values
// override the config file.
type options struct {
	configFile string

	recipientPublicKey  string
	recipientPrivateKey string
	signerPublicKey     string
	signerPrivateKey    string

	keyAlgorithm     string
	contentAlgorithm string
	signingAlgorithm string

	quotedInnerToken bool
	keyIDs           bool
}

func newRootCommand() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "envelope",
		Short: "Encrypt-then-sign JSON payloads as nested JOSE tokens",
		Long: `Envelope encrypts a JSON payload for a recipient as a JWE (RSA-OAEP,
AES-GCM), then signs the JWE as the payload of a JWS (RS256).

Opening an envelope verifies the signature first and only decrypts the
inner JWE when the signature is valid.

Every flag can also be set with an ENVELOPE_<FLAG> environment variable,
for example ENVELOPE_SIGNER_PRIVATE_KEY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setFlagsFromEnv(envPrefix, cmd.Flags())
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVarP(&o.configFile, "config", "c", "", "Path to a YAML config file.")
	fs.StringVar(&o.recipientPublicKey, "recipient-public-key", "", "PEM certificate or public key of the recipient, used to encrypt.")
	fs.StringVar(&o.recipientPrivateKey, "recipient-private-key", "", "PEM private key of the recipient, used to decrypt.")
	fs.StringVar(&o.signerPublicKey, "signer-public-key", "", "PEM certificate or public key of the signer, used to verify.")
	fs.StringVar(&o.signerPrivateKey, "signer-private-key", "", "PEM private key of the signer, used to sign.")
	fs.StringVar(&o.keyAlgorithm, "key-algorithm", "", fmt.Sprintf("JWE key management algorithm, one of %v. (default: %s)", jwa.DefaultKeyManagementAlgorithms().List(), jwa.RSAOAEP))
	fs.StringVar(&o.contentAlgorithm, "content-algorithm", "", fmt.Sprintf("JWE content encryption algorithm, one of %v. (default: %s)", jwa.DefaultContentEncryptionAlgorithms().List(), jwa.A128GCM))
	fs.StringVar(&o.signingAlgorithm, "signing-algorithm", "", fmt.Sprintf("JWS algorithm, one of [%s %s %s]. (default: %s)", jwa.RS256, jwa.RS384, jwa.RS512, jwa.RS256))
	fs.BoolVar(&o.quotedInnerToken, "quoted-inner-token", false, "Sign the inner JWE as a JSON string, quotes included.")
	fs.BoolVar(&o.keyIDs, "key-ids", false, "Stamp and check RFC 7638 thumbprint key ids.")
	logs.AddFlags(fs)

	cmd.AddCommand(
		newKeygenCommand(),
		newEncryptCommand(o),
		newDecryptCommand(o),
		newSignCommand(o),
		newVerifyCommand(o),
		newSealCommand(o),
		newOpenCommand(o),
		newDemoCommand(o),
	)

	return cmd
}

// config loads the config file, if any, and applies the flags on top.
func (o *options) config() (config.Config, error) {
	cfg := config.Default()

	if o.configFile != "" {
		var err error
		cfg, err = config.Load(o.configFile)
		if err != nil {
			return cfg, err
		}
	}

	overrideKey(&cfg.Recipient.PublicKey, o.recipientPublicKey)
	overrideKey(&cfg.Recipient.PrivateKey, o.recipientPrivateKey)
	overrideKey(&cfg.Signer.PublicKey, o.signerPublicKey)
	overrideKey(&cfg.Signer.PrivateKey, o.signerPrivateKey)

	if o.keyAlgorithm != "" {
		cfg.KeyAlgorithm = o.keyAlgorithm
	}
	if o.contentAlgorithm != "" {
		cfg.ContentAlgorithm = o.contentAlgorithm
	}
	if o.signingAlgorithm != "" {
		cfg.SigningAlgorithm = o.signingAlgorithm
	}
	if o.quotedInnerToken {
		cfg.QuotedInnerToken = true
	}
	if o.keyIDs {
		cfg.KeyIDs = true
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func overrideKey(key *config.Key, path string) {
	if path != "" {
		*key = config.Key{Path: path}
	}
}

func setFlagsFromEnv(prefix string, fs *pflag.FlagSet) {
	set := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) {
		set[f.Name] = true
	})
	fs.VisitAll(func(f *pflag.Flag) {
		// ignore flags set from the commandline
		if set[f.Name] {
			return
		}
		// remove trailing _ to reduce common errors with the prefix, i.e. people setting it to MY_PROG_
		cleanPrefix := strings.TrimSuffix(prefix, "_")
		name := fmt.Sprintf("%s_%s", cleanPrefix, strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"))
		if e, ok := os.LookupEnv(name); ok {
			_ = f.Value.Set(e)
		}
	})
}
