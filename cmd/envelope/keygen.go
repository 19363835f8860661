package main

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwk"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

type keygenOptions struct {
	outDir     string
	bits       int
	format     string
	commonName string
	validity   time.Duration
}

func newKeygenCommand() *cobra.Command {
	o := &keygenOptions{}

	cmd := &cobra.Command{
		Use:   "keygen NAME",
		Short: "Generate an RSA key pair and a self-signed certificate",
		Long: `Keygen writes NAME.key (private key), NAME.pub (public key),
NAME.crt (self-signed certificate) and NAME.jwk (public JWK, with its
RFC 7638 thumbprint as "kid") to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}

	cmd.Flags().StringVarP(&o.outDir, "out-dir", "o", ".", "Directory to write the key files to.")
	cmd.Flags().IntVar(&o.bits, "bits", 2048, "RSA modulus size in bits.")
	cmd.Flags().StringVar(&o.format, "format", keyutil.PrivateKeyPKCS8.String(), `Private key encoding, "pkcs8" or "pkcs1".`)
	cmd.Flags().StringVar(&o.commonName, "common-name", "", "Certificate common name. (default: NAME)")
	cmd.Flags().DurationVar(&o.validity, "validity", 365*24*time.Hour, "Certificate validity period.")

	return cmd
}

func (o *keygenOptions) run(cmd *cobra.Command, name string) error {
	if o.bits < jwa.MinRSAKeyBits {
		return fmt.Errorf("key size %d is below the minimum of %d bits", o.bits, jwa.MinRSAKeyBits)
	}

	kind, err := keyutil.ParseKind(o.format)
	if err != nil {
		return err
	}
	if !kind.IsPrivate() {
		return fmt.Errorf("format %q is not a private key encoding", o.format)
	}

	commonName := o.commonName
	if commonName == "" {
		commonName = name
	}

	public, private, err := keyutil.NewRSAKeyPair(o.bits)
	if err != nil {
		return err
	}

	privatePEM, err := keyutil.EncodePrivateKeyPEM(private, kind)
	if err != nil {
		return err
	}

	publicPEM, err := keyutil.EncodePublicKeyPEM(public)
	if err != nil {
		return err
	}

	certificatePEM, err := keyutil.NewSelfSignedCertificate(private, commonName, o.validity)
	if err != nil {
		return err
	}

	publicJWK, err := encodeJWK(public)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(o.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, file := range []struct {
		ext  string
		data []byte
		perm os.FileMode
	}{
		{".key", privatePEM, 0o600},
		{".pub", publicPEM, 0o644},
		{".crt", certificatePEM, 0o644},
		{".jwk", publicJWK, 0o644},
	} {
		path := filepath.Join(o.outDir, name+file.ext)
		if err := os.WriteFile(path, file.data, file.perm); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}

	return nil
}

func encodeJWK(public *rsa.PublicKey) ([]byte, error) {
	value, err := jwk.ValueFromPublicKey(public)
	if err != nil {
		return nil, err
	}

	kid, err := keyutil.FromRSAPublicKey(public).KeyID()
	if err != nil {
		return nil, err
	}
	value[jwk.KeyID] = kid

	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JWK: %w", err)
	}
	return append(b, '\n'), nil
}
