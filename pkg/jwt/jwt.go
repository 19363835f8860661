package jwt

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heliostechlabs/axis-test-enc/pkg/header"
	"github.com/heliostechlabs/axis-test-enc/pkg/jwa"
	"github.com/heliostechlabs/axis-test-enc/pkg/jws"
	"github.com/heliostechlabs/axis-test-enc/pkg/keyutil"
	"golang.org/x/exp/slices"
)

// Type "JWT" is the media type used by JSON Web Token (JWT).
//
// https://www.rfc-editor.org/rfc/rfc7519.html#section-5.1
const Type = "JWT"

// Token is a decoded JSON Web Token: a set of claims as a JSON object
// carried as the payload of a JWS.
//
// JWTs contain three parts, separated by dots (".") which are:
//
//  1. Header
//  2. Claims (Payload)
//  3. Signature
//
// https://datatracker.ietf.org/doc/html/rfc7519#section-1
type Token struct {
	// Header is the set of parameters that are used to describe
	// the cryptographic operations applied to the JWT claims set.
	Header header.Parameters

	// Claims is the set of claims that are asserted by the JWT.
	//
	// This is sometimes referred to as the "payload".
	Claims ClaimsSet

	// Signature is the RSA signature over the header and claims.
	Signature []byte

	// raw is the compact serialization the token was parsed from or
	// produced as.
	raw string
}

// Config holds the settings used by New.
type Config struct {
	// Algorithm is the RSA signing algorithm, RS256 unless set.
	Algorithm jwa.Algorithm

	// KeyID is the optional "kid" header parameter.
	KeyID string

	// GenerateID adds a random "jti" claim when the claims set has none.
	GenerateID bool
}

// Option is a functional option type used to configure New.
type Option func(*Config) error

// WithAlgorithm sets the signing algorithm.
func WithAlgorithm(alg jwa.Algorithm) Option {
	return func(c *Config) error {
		if _, ok := jwa.SigningHash(alg); !ok {
			return fmt.Errorf("unsupported algorithm %q", alg)
		}
		c.Algorithm = alg
		return nil
	}
}

// WithKeyID sets the "kid" header parameter.
func WithKeyID(kid string) Option {
	return func(c *Config) error {
		c.KeyID = kid
		return nil
	}
}

// WithGeneratedID adds a random UUID "jti" claim unless one is given.
func WithGeneratedID() Option {
	return func(c *Config) error {
		c.GenerateID = true
		return nil
	}
}

// New creates a signed Token. If this fails for any reason, an error is
// returned with a nil token.
//
// The claims set must not be empty. Time claims ("exp", "nbf", "iat") may
// be given as time.Time or integers and are stored as NumericDate values.
func New(claims ClaimsSet, signer *keyutil.KeyMaterial, opts ...Option) (*Token, error) {
	if len(claims) == 0 {
		return nil, ErrNoClaimSet
	}

	config := &Config{Algorithm: jwa.RS256}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("option error: %w", err)
		}
	}

	if _, ok := claims[JWTID]; config.GenerateID && !ok {
		claims[JWTID] = uuid.NewString()
	}

	if err := claims.normalize(); err != nil {
		return nil, NewInvalidTypeError(err)
	}

	if !signer.HasPrivate() {
		return nil, NewSigningError(jws.ErrNoPrivateKey)
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return nil, NewSigningError(fmt.Errorf("failed to encode claims JSON: %w", err))
	}

	params := header.Parameters{
		header.Type:      Type,
		header.Algorithm: config.Algorithm,
	}
	if config.KeyID != "" {
		params[header.KeyID] = config.KeyID
	}

	signature, err := jws.New(params, payload, signer.Private())
	if err != nil {
		return nil, NewSigningError(err)
	}

	return &Token{
		Header:    params,
		Claims:    claims,
		Signature: signature.Signature,
		raw:       signature.String(),
	}, nil
}

// String returns the compact serialization of the token.
func (t *Token) String() string {
	return t.raw
}

// Parse parses a given JWT, and returns a Token or an error if the JWT
// fails to parse.
//
// # Warning
//
// This is a low-level function that does not verify the signature of
// the token. Use ParseAndVerify to parse and verify in one step.
func Parse(input string) (*Token, error) {
	signature, err := jws.Parse(input)
	if err != nil {
		return nil, err
	}
	return fromSignature(input, signature)
}

func fromSignature(input string, signature *jws.Signature) (*Token, error) {
	if typ, err := signature.Header.Type(); err == nil && typ != Type {
		return nil, NewInvalidTypeError(fmt.Errorf("header type %q is not supported", typ))
	}

	claims := ClaimsSet{}
	if err := json.Unmarshal(signature.Payload, &claims); err != nil {
		return nil, fmt.Errorf("failed to decode claims JSON: %w", err)
	}

	// Time claims decode as float64.
	for _, name := range []ClaimName{IssuedAt, ExpirationTime, NotBefore} {
		value, ok := claims[name]
		if !ok {
			continue
		}
		f, ok := value.(float64)
		if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, NewInvalidTypeError(fmt.Errorf("invalid value %v used for %q", value, name))
		}
		claims[name] = int64(f)
	}

	return &Token{
		Header:    signature.Header,
		Claims:    claims,
		Signature: signature.Signature,
		raw:       input,
	}, nil
}

// VerifyConfig is a configuration type for verifying JWTs.
type VerifyConfig struct {
	// AllowedAlgorithms is the set of allowed algorithms for the JWT.
	//
	// If not set, only RS256 is allowed.
	AllowedAlgorithms []jwa.Algorithm

	// AllowedIssuers is a set of allowed issuers for the JWT.
	//
	// If not set, then any issuers are allowed.
	AllowedIssuers []string

	// AllowedAudiences is a set of allowed audiences for the JWT.
	//
	// If not set, then any audiences are allowed.
	AllowedAudiences []string

	// Clock is used to check the "exp" and "nbf" claims.
	Clock Clock

	// ClockSkewTolerance is how far the clock may drift from the issuer's
	// when checking "exp" and "nbf".
	ClockSkewTolerance time.Duration
}

// VerifyOption is a functional option type used to configure
// the verification requirements for JWTs.
type VerifyOption func(*VerifyConfig) error

// WithAllowedIssuers sets the allowed issuers for the JWT.
func WithAllowedIssuers(issuers ...string) VerifyOption {
	return func(vc *VerifyConfig) error {
		vc.AllowedIssuers = issuers
		return nil
	}
}

// WithAllowedAudiences sets the allowed audiences for the JWT.
func WithAllowedAudiences(audiences ...string) VerifyOption {
	return func(vc *VerifyConfig) error {
		vc.AllowedAudiences = audiences
		return nil
	}
}

// WithAllowedAlgorithms sets the allowed algorithms for the JWT.
func WithAllowedAlgorithms(algs ...jwa.Algorithm) VerifyOption {
	return func(vc *VerifyConfig) error {
		vc.AllowedAlgorithms = algs
		return nil
	}
}

// WithClock sets the clock function for verifying the JWT.
func WithClock(clock Clock) VerifyOption {
	return func(vc *VerifyConfig) error {
		if clock == nil {
			return fmt.Errorf("nil clock")
		}
		vc.Clock = clock
		return nil
	}
}

// WithDefaultClock sets the clock function for verifying the JWT
// to time.Now.
func WithDefaultClock() VerifyOption {
	return WithClock(time.Now)
}

// WithClockSkewTolerance accepts tokens that expired, or become valid,
// within d of the current time.
func WithClockSkewTolerance(d time.Duration) VerifyOption {
	return func(vc *VerifyConfig) error {
		if d < 0 {
			return fmt.Errorf("negative clock skew tolerance %v", d)
		}
		vc.ClockSkewTolerance = d
		return nil
	}
}

// Clock is type used to represent a function that returns the current time.
type Clock func() time.Time

// ParseAndVerify verifies the signature of the given JWT with key, then
// checks its claims using the given verification options.
func ParseAndVerify(input string, key *keyutil.KeyMaterial, opts ...VerifyOption) (*Token, error) {
	config := &VerifyConfig{
		AllowedAlgorithms: jwa.DefaultAllowedAlgorithms().List(),
		Clock:             time.Now,
	}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, fmt.Errorf("verify option error: %w", err)
		}
	}

	signature, err := jws.VerifySignature(input, key, jws.WithAllowedAlgorithms(config.AllowedAlgorithms...))
	if err != nil {
		return nil, fmt.Errorf("failed to verify JWT signature: %w", err)
	}

	token, err := fromSignature(input, signature)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	if err := token.verifyClaims(config); err != nil {
		return nil, err
	}

	return token, nil
}

func (t *Token) verifyClaims(config *VerifyConfig) error {
	// If the allowed issuers is empty, then any issuer is allowed.
	if config.AllowedIssuers != nil {
		issuer, _ := t.Claims[Issuer].(string)

		if !slices.Contains(config.AllowedIssuers, issuer) {
			return fmt.Errorf("%w: requested issuer %q is not allowed", ErrIssuerNotAllowed, issuer)
		}
	}

	if config.AllowedAudiences != nil {
		audiences, err := t.Claims.Audiences()
		if err != nil {
			return err
		}

		allowed := false
		for _, audience := range audiences {
			if slices.Contains(config.AllowedAudiences, audience) {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: none of the requested audiences %q are allowed", ErrAudienceNotAllowed, audiences)
		}
	}

	skew := config.ClockSkewTolerance

	expired, err := t.Expired(func() time.Time { return config.Clock().Add(-skew) })
	if err != nil {
		return fmt.Errorf("failed to validate token expiration: %w", err)
	}

	if expired {
		return ErrTokenExpired
	}

	if notBeforeValue, ok := t.Claims[NotBefore]; ok {
		notBeforeInt, ok := notBeforeValue.(int64)
		if !ok {
			return fmt.Errorf("token contains invalid %q value %v", NotBefore, notBeforeValue)
		}
		notBefore := time.Unix(notBeforeInt, 0)
		if config.Clock().Add(skew).Before(notBefore) {
			return fmt.Errorf("%w: not before %v", ErrTokenNotYetValid, notBefore)
		}
	}

	return nil
}

// Expired returns true if the token is expired, false otherwise.
// If an error occurs while checking expiration, it is returned.
//
// Only use the boolean value if error is nil.
func (t *Token) Expired(clock Clock) (bool, error) {
	expValue, ok := t.Claims[ExpirationTime]
	if !ok {
		return false, nil
	}
	expInt, ok := expValue.(int64)
	if !ok {
		return false, fmt.Errorf("invalid value %v for %q", expValue, ExpirationTime)
	}
	exp := time.Unix(expInt, 0)

	return !clock().Before(exp), nil
}

// Expires returns true if the token has an expiration time claim,
// false otherwise.
func (t *Token) Expires() (bool, error) {
	expValue, ok := t.Claims[ExpirationTime]
	if !ok {
		return false, nil
	}
	if _, ok := expValue.(int64); !ok {
		return false, fmt.Errorf("invalid value %v for %q", expValue, ExpirationTime)
	}
	return true, nil
}

// FromHTTPAuthorizationHeader extracts a bearer token, such as a JWT or a
// sealed envelope, from the Authorization header of an HTTP request.
//
// # Warning
//
// This value needs to be parsed and verified before it can be used safely.
func FromHTTPAuthorizationHeader(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid authorization header format")
	}

	if !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("invalid authorization header format")
	}

	return parts[1], nil
}

// SetHTTPAuthorizationHeader sets the Authorization header of an HTTP
// request to the given bearer token.
//
// https://tools.ietf.org/html/rfc6750#section-2.1
func SetHTTPAuthorizationHeader[T ~string](r *http.Request, token T) {
	r.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
}
