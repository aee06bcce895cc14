// Package token implements the typed, encrypted, authenticated tokens
// exchanged between WebAuth trust domains.
//
// A token is one of a closed set of kinds (app, cred, error, id, login,
// proxy, request, webkdc-factor, webkdc-proxy, webkdc-service), each a
// record of typed attributes. [Encode] validates a record, serializes it
// to an attribute stream, seals it with the newest mature key from a
// keyring, and base64-wraps the result. [Decode] reverses the pipeline:
// it tries the keyring's keys (the one matching the envelope's key hint
// first), parses the attribute stream, enforces the expected kind, and
// rejects expired tokens.
//
//	enc, err := token.Encode(&token.LoginToken{
//	    Username: "alice",
//	    Password: "correct horse",
//	}, ring)
//
//	decoded, err := token.Decode(enc, token.Any, ring)
//	if login, ok := decoded.(*token.LoginToken); ok {
//	    // ...
//	}
//
// Raw (unwrapped) variants exist for callers that carry tokens in binary
// protocols. Credential blobs inside cred and id tokens are opaque to
// this package; they come from and return to the Kerberos layer unparsed.
package token
