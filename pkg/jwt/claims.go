package jwt

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/heliostechlabs/axis-test-enc/pkg/base64"
)

// There are three classes of JWT Claim Names:
// 1. Registered Claim Names
// 2. Public Claim Names
// 3. Private Claim Names
type (
	ClaimName = string

	Registered = ClaimName
	Public     = ClaimName
	Private    = ClaimName
)

// ClaimValue is a piece of information asserted about a subject, represented
// as a name/value pair consisting of a ClaimName and a ClaimValue.
type ClaimValue = any

// Registered Claim Names
//
// https://datatracker.ietf.org/doc/html/rfc7519#section-4.1
const (
	Issuer         Registered = "iss"
	Subject        Registered = "sub"
	Audience       Registered = "aud"
	ExpirationTime Registered = "exp"
	NotBefore      Registered = "nbf"
	IssuedAt       Registered = "iat"
	JWTID          Registered = "jti"
)

// ClaimsSet is a JSON object that contains the claims conveyed by the JWT.
//
// A claim is a piece of information asserted about a subject, represented
// as a name/value pair consisting of a Claim Name and a Claim Value.
type ClaimsSet map[ClaimName]ClaimValue

// String returns the base64url encoded JSON claims set, which is the
// second segment of a compact serialization.
func (claims ClaimsSet) String() string {
	b, err := json.Marshal(claims)
	if err != nil {
		return fmt.Sprintf("<invalid-claims-set %q: %#v>", err, claims)
	}

	return base64.Encode(b)
}

func (claims ClaimsSet) Get(name ClaimName) (ClaimValue, error) {
	value, ok := claims[name]
	if !ok {
		return nil, fmt.Errorf("claim %q not found in claims set", name)
	}
	return value, nil
}

func (claims ClaimsSet) Set(name ClaimName, value ClaimValue) {
	claims[name] = value
}

func (claims ClaimsSet) Names() []ClaimName {
	var names []ClaimName

	for name := range claims {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Audiences returns the "aud" claim, which may be a single string or an
// array of strings.
//
// https://www.rfc-editor.org/rfc/rfc7519.html#section-4.1.3
func (claims ClaimsSet) Audiences() ([]string, error) {
	switch v := claims[Audience].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid type %T in %q claim", item, Audience)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid type %T used for %q", v, Audience)
	}
}

// normalize converts registered claims to their JSON representation,
// time claims to NumericDate seconds in particular.
func (claims ClaimsSet) normalize() error {
	for name, value := range claims {
		switch name {
		case ExpirationTime, NotBefore, IssuedAt:
			switch v := value.(type) {
			case int64:
			case int:
				claims[name] = int64(v)
			case time.Time:
				claims[name] = v.Unix()
			default:
				return fmt.Errorf("cannot use %T with %q", v, name)
			}
		case Issuer, Subject, JWTID:
			switch v := value.(type) {
			case string:
			case fmt.Stringer:
				claims[name] = v.String()
			default:
				return fmt.Errorf("cannot use %T with %q", v, name)
			}
		case Audience:
			if _, err := claims.Audiences(); err != nil {
				return err
			}
		}
	}
	return nil
}
