// Package config reads the settings used by the envelope command: where
// the recipient and signer keys live and which algorithms to use.
package config

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/heliostechlabs/axis-test-enc/pkg/envelope"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
)

// Config wraps the options for a run of the envelope command.
type Config struct {
	Recipient Party `yaml:"recipient"`
	Signer    Party `yaml:"signer"`

	KeyAlgorithm     jwa.Algorithm `yaml:"key_algorithm"`
	ContentAlgorithm jwa.Algorithm `yaml:"content_algorithm"`
	SigningAlgorithm jwa.Algorithm `yaml:"signing_algorithm"`

	QuotedInnerToken bool `yaml:"quoted_inner_token"`
	KeyIDs           bool `yaml:"key_ids"`
}

// Party holds the key files of one side of the exchange. Either key may
// be omitted when the operation does not need it.
type Party struct {
	PublicKey  Key `yaml:"public_key"`
	PrivateKey Key `yaml:"private_key"`
}

// Key is a PEM file and its declared kind. An empty kind is inferred
// from the PEM block type.
type Key struct {
	Path string `yaml:"path"`
	Kind string `yaml:"kind,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		KeyAlgorithm:     jwa.RSAOAEP,
		ContentAlgorithm: jwa.A128GCM,
		SigningAlgorithm: jwa.RS256,
	}
}

// Parse reads YAML into a Config, fills in default algorithms and
// validates the result.
func Parse(data []byte) (Config, error) {
	config := Default()

	if err := yaml.UnmarshalStrict(data, &config); err != nil {
		return config, errors.Wrap(err, "failed to parse config")
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return config, err
	}

	return config, nil
}

// Load reads and parses the named config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Dump generates a YAML string of the Config object
func (c *Config) Dump() (string, error) {
	d, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate YAML dump of config")
	}
	return string(d), nil
}

func (c *Config) setDefaults() {
	defaults := Default()
	if c.KeyAlgorithm == "" {
		c.KeyAlgorithm = defaults.KeyAlgorithm
	}
	if c.ContentAlgorithm == "" {
		c.ContentAlgorithm = defaults.ContentAlgorithm
	}
	if c.SigningAlgorithm == "" {
		c.SigningAlgorithm = defaults.SigningAlgorithm
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if !jwa.DefaultKeyManagementAlgorithms().Allowed(c.KeyAlgorithm) {
		result = multierror.Append(result, fmt.Errorf("unsupported key_algorithm %q", c.KeyAlgorithm))
	}

	if !jwa.DefaultContentEncryptionAlgorithms().Allowed(c.ContentAlgorithm) {
		result = multierror.Append(result, fmt.Errorf("unsupported content_algorithm %q", c.ContentAlgorithm))
	}

	if _, ok := jwa.SigningHash(c.SigningAlgorithm); !ok {
		result = multierror.Append(result, fmt.Errorf("unsupported signing_algorithm %q", c.SigningAlgorithm))
	}

	for _, party := range []struct {
		name  string
		party Party
	}{
		{"recipient", c.Recipient},
		{"signer", c.Signer},
	} {
		if err := party.party.PublicKey.validate(false); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s.public_key: %w", party.name, err))
		}
		if err := party.party.PrivateKey.validate(true); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s.private_key: %w", party.name, err))
		}
	}

	return result.ErrorOrNil()
}

func (k Key) validate(private bool) error {
	kind, err := keyutil.ParseKind(k.Kind)
	if err != nil {
		return err
	}

	if k.Path == "" && k.Kind != "" {
		return fmt.Errorf("kind %q given without a path", k.Kind)
	}

	if kind != keyutil.Auto && kind.IsPrivate() != private {
		return fmt.Errorf("kind %q cannot be used here", kind)
	}

	return nil
}

// Load reads the key file.
func (k Key) Load() (*keyutil.KeyMaterial, error) {
	kind, err := keyutil.ParseKind(k.Kind)
	if err != nil {
		return nil, err
	}
	return keyutil.LoadFile(k.Path, kind)
}

// Public loads the public key of the party, falling back to the public
// half of its private key.
func (p Party) Public() (*keyutil.KeyMaterial, error) {
	switch {
	case p.PublicKey.Path != "":
		return p.PublicKey.Load()
	case p.PrivateKey.Path != "":
		key, err := p.PrivateKey.Load()
		if err != nil {
			return nil, err
		}
		return key.PublicOnly(), nil
	default:
		return nil, fmt.Errorf("no public or private key configured")
	}
}

// Private loads the private key of the party.
func (p Party) Private() (*keyutil.KeyMaterial, error) {
	if p.PrivateKey.Path == "" {
		return nil, fmt.Errorf("no private key configured")
	}

	key, err := p.PrivateKey.Load()
	if err != nil {
		return nil, err
	}

	if !key.HasPrivate() {
		return nil, fmt.Errorf("key file %q holds no private key", p.PrivateKey.Path)
	}

	return key, nil
}

// Composer builds the envelope composer described by the configuration.
func (c *Config) Composer(log logr.Logger) (*envelope.Composer, error) {
	opts := []envelope.Option{
		envelope.WithKeyAlgorithm(c.KeyAlgorithm),
		envelope.WithContentAlgorithm(c.ContentAlgorithm),
		envelope.WithSigningAlgorithm(c.SigningAlgorithm),
		envelope.WithLogger(log),
	}

	if c.QuotedInnerToken {
		opts = append(opts, envelope.WithQuotedInnerToken())
	}

	if c.KeyIDs {
		opts = append(opts, envelope.WithKeyIDs())
	}

	return envelope.New(opts...)
}
