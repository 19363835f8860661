// Package envelope nests a JWE inside a JWS, giving a token that is both
// confidential to its recipient and attributable to its signer.
//
// Sealing encrypts first and signs the resulting JWE. Opening verifies the
// signature first and only decrypts once it has verified, so a forged or
// altered envelope never reaches the private key of the recipient.
package envelope
