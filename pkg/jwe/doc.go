// Package jwe implements JSON Web Encryption in compact serialization with
// RSAES-OAEP key management and AES GCM content encryption.
//
// https://www.rfc-editor.org/rfc/rfc7516.html
package jwe
