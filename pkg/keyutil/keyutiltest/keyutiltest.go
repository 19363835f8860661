// Package keyutiltest holds PEM fixtures for tests.
//
// The recipient certificate and private key are the pair used by the
// end-to-end demonstration: the certificate carries the public half of
// the RSA key found (in PKCS #8, PKCS #1 and public forms) next to it.
package keyutiltest

import (
	_ "embed"
)

var (
	//go:embed testdata/recipient.crt
	RecipientCertificate []byte

	//go:embed testdata/recipient_pkcs8.pem
	RecipientPKCS8 []byte

	//go:embed testdata/recipient_pkcs1.pem
	RecipientPKCS1 []byte

	//go:embed testdata/recipient_public.pem
	RecipientPublicKey []byte

	//go:embed testdata/recipient_rsa_public.pem
	RecipientRSAPublicKey []byte

	// OtherPKCS8 is an unrelated 2048 bit RSA key, used for key mismatch cases.
	//go:embed testdata/other_pkcs8.pem
	OtherPKCS8 []byte

	// WeakPKCS1 is a 1024 bit RSA key, too small for any supported algorithm.
	//go:embed testdata/weak_pkcs1.pem
	WeakPKCS1 []byte

	//go:embed testdata/ec_pkcs8.pem
	ECPKCS8 []byte

	//go:embed testdata/ec_public.pem
	ECPublicKey []byte
)
