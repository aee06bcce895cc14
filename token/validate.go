package token

import (
	"github.com/opd-ai/webauth"
)

// checkMode says whether a record is being validated for encoding or
// decoding. Expiration is only enforced when decoding, since creating an
// already-expired token is sometimes useful (for testing, for example).
type checkMode int

const (
	modeEncode checkMode = iota
	modeDecode
)

func missing(attr string, kind Type) error {
	return webauth.New(webauth.CodeCorrupt, "missing %s in %s token", attr, kind)
}

func forbidden(attr, reason string, kind Type) error {
	return webauth.New(webauth.CodeCorrupt, "%s not valid with %s in %s token",
		attr, reason, kind)
}

// checkExpiration enforces a present expiration and, when decoding,
// rejects tokens past it.
func checkExpiration(expiration int64, mode checkMode, kind Type) error {
	if expiration == 0 {
		return missing("expiration", kind)
	}
	if mode == modeDecode && expiration < webauth.NowUnix() {
		return webauth.New(webauth.CodeTokenExpired,
			"%s token expired at %d", kind, expiration)
	}
	return nil
}

func checkCredType(credType string, kind Type) error {
	if credType != "krb5" {
		return webauth.New(webauth.CodeCorrupt,
			"unknown credential type %s in %s token", credType, kind)
	}
	return nil
}

func checkProxyType(proxyType string, kind Type) error {
	if proxyType != "krb5" {
		return webauth.New(webauth.CodeCorrupt,
			"unknown proxy type %s in %s token", proxyType, kind)
	}
	return nil
}

func checkSubjectAuth(auth string, kind Type) error {
	if auth != "krb5" && auth != "webkdc" {
		return webauth.New(webauth.CodeCorrupt,
			"unknown auth type %s in %s token", auth, kind)
	}
	return nil
}

func (t *AppToken) check(mode checkMode) error {
	if err := checkExpiration(t.Expiration, mode, App); err != nil {
		return err
	}
	if t.SessionKey == nil {
		if t.Subject == "" {
			return missing("subject", App)
		}
		return nil
	}
	// The session-key variant carries no user state.
	switch {
	case t.Subject != "":
		return forbidden("subject", "session key", App)
	case t.AuthzSubject != "":
		return forbidden("authz subject", "session key", App)
	case t.LastUsed != 0:
		return forbidden("last used", "session key", App)
	case t.InitialFactors != "":
		return forbidden("initial factors", "session key", App)
	case t.SessionFactors != "":
		return forbidden("session factors", "session key", App)
	case t.LOA != 0:
		return forbidden("LoA", "session key", App)
	}
	return nil
}

func (t *CredToken) check(mode checkMode) error {
	if t.Subject == "" {
		return missing("subject", Cred)
	}
	if t.Type == "" {
		return missing("credential type", Cred)
	}
	if t.Service == "" {
		return missing("service", Cred)
	}
	if len(t.Data) == 0 {
		return missing("credential data", Cred)
	}
	if err := checkExpiration(t.Expiration, mode, Cred); err != nil {
		return err
	}
	return checkCredType(t.Type, Cred)
}

func (t *ErrorToken) check(checkMode) error {
	if t.Code == 0 {
		return missing("error code", Error)
	}
	if t.Message == "" {
		return missing("error message", Error)
	}
	return nil
}

func (t *IDToken) check(mode checkMode) error {
	if t.Auth == "" {
		return missing("subject auth", ID)
	}
	if err := checkExpiration(t.Expiration, mode, ID); err != nil {
		return err
	}
	if t.Auth == "webkdc" && t.Subject == "" {
		return missing("subject", ID)
	}
	if t.Auth == "krb5" && len(t.AuthData) == 0 {
		return missing("auth data", ID)
	}
	return checkSubjectAuth(t.Auth, ID)
}

func (t *LoginToken) check(checkMode) error {
	if t.Username == "" {
		return missing("username", Login)
	}
	if t.Password == "" && t.OTP == "" {
		return webauth.New(webauth.CodeCorrupt,
			"either password or otp required in login token")
	}
	if t.Password != "" && t.OTP != "" {
		return webauth.New(webauth.CodeCorrupt,
			"both password and otp set in login token")
	}
	if t.Password != "" && t.OTPType != "" {
		return forbidden("otp type", "password", Login)
	}
	return nil
}

func (t *ProxyToken) check(mode checkMode) error {
	if t.Subject == "" {
		return missing("subject", Proxy)
	}
	if t.Type == "" {
		return missing("proxy type", Proxy)
	}
	if len(t.WebKDCProxy) == 0 {
		return missing("webkdc-proxy token", Proxy)
	}
	if err := checkExpiration(t.Expiration, mode, Proxy); err != nil {
		return err
	}
	return checkProxyType(t.Type, Proxy)
}

func (t *RequestToken) check(checkMode) error {
	// A command request carries nothing but the command; the regular
	// form asks for a specific token type.
	if t.Command != "" {
		switch {
		case t.Type != "":
			return forbidden("requested token type", "command", Request)
		case t.Auth != "":
			return forbidden("subject auth", "command", Request)
		case t.ProxyType != "":
			return forbidden("proxy type", "command", Request)
		case len(t.State) != 0:
			return forbidden("state", "command", Request)
		case t.ReturnURL != "":
			return forbidden("return URL", "command", Request)
		case t.Options != "":
			return forbidden("options", "command", Request)
		case t.InitialFactors != "":
			return forbidden("initial factors", "command", Request)
		case t.SessionFactors != "":
			return forbidden("session factors", "command", Request)
		}
		return nil
	}
	if t.Type == "" {
		return missing("requested token type", Request)
	}
	if t.ReturnURL == "" {
		return missing("return URL", Request)
	}
	switch t.Type {
	case "id":
		if t.Auth == "" {
			return missing("subject auth", Request)
		}
		return checkSubjectAuth(t.Auth, Request)
	case "proxy":
		if t.ProxyType == "" {
			return missing("proxy type", Request)
		}
		return checkProxyType(t.ProxyType, Request)
	}
	return webauth.New(webauth.CodeCorrupt,
		"unknown requested token type %s in request token", t.Type)
}

func (t *WebKDCFactorToken) check(mode checkMode) error {
	if t.Subject == "" {
		return missing("subject", WebKDCFactor)
	}
	if err := checkExpiration(t.Expiration, mode, WebKDCFactor); err != nil {
		return err
	}
	if t.InitialFactors == "" && t.SessionFactors == "" {
		return webauth.New(webauth.CodeCorrupt,
			"no factors present in webkdc-factor token")
	}
	return nil
}

func (t *WebKDCProxyToken) check(mode checkMode) error {
	if t.Subject == "" {
		return missing("subject", WebKDCProxy)
	}
	if t.ProxyType == "" {
		return missing("proxy type", WebKDCProxy)
	}
	if t.ProxySubject == "" {
		return missing("proxy subject", WebKDCProxy)
	}
	if err := checkExpiration(t.Expiration, mode, WebKDCProxy); err != nil {
		return err
	}
	switch t.ProxyType {
	case "krb5", "remuser", "otp":
		return nil
	}
	return webauth.New(webauth.CodeCorrupt,
		"unknown proxy type %s in webkdc-proxy token", t.ProxyType)
}

func (t *WebKDCServiceToken) check(mode checkMode) error {
	if t.Subject == "" {
		return missing("subject", WebKDCService)
	}
	if len(t.SessionKey) == 0 {
		return missing("session key", WebKDCService)
	}
	return checkExpiration(t.Expiration, mode, WebKDCService)
}
