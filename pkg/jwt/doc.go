// Package jwt creates and verifies RSA signed JSON Web Tokens (JWTs).
//
// Tokens are JWS compact serializations with a "typ" of "JWT" and a JSON
// claims set as payload. Verification checks the signature first, then
// the "iss", "aud", "exp" and "nbf" claims.
package jwt
