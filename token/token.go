package token

// Type identifies the kind of a token. The zero value is Unknown, which
// is never a valid wire kind; Any is accepted only by decoders and
// matches every kind.
type Type int

// Token kinds.
const (
	Unknown Type = iota
	App
	Cred
	Error
	ID
	Login
	Proxy
	Request
	WebKDCFactor
	WebKDCProxy
	WebKDCService
	Any
)

// typeNames maps kinds to the wire value of the type attribute. Request
// tokens use the historical short name.
var typeNames = map[Type]string{
	App:           "app",
	Cred:          "cred",
	Error:         "error",
	ID:            "id",
	Login:         "login",
	Proxy:         "proxy",
	Request:       "req",
	WebKDCFactor:  "webkdc-factor",
	WebKDCProxy:   "webkdc-proxy",
	WebKDCService: "webkdc-service",
}

// String returns the wire name of the type, "any" for Any, or "unknown".
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	if t == Any {
		return "any"
	}
	return "unknown"
}

// ParseType maps a wire type name to its Type. Unrecognized names map to
// Unknown.
func ParseType(name string) Type {
	for t, n := range typeNames {
		if n == name {
			return t
		}
	}
	return Unknown
}

// Token is the closed union of all token records. The concrete types are
// the *Token structs in this package; external types cannot satisfy the
// interface.
type Token interface {
	// Kind returns the token's type.
	Kind() Type

	// check validates the record against its kind's rules.
	check(mode checkMode) error

	// stamp fills a zero creation time before encoding.
	stamp(now int64)
}

// AppToken is issued by the WebKDC to a WebAuth application server and
// then stored in a browser cookie to hold the user's authentication
// state. A variant carrying only a session key (and no subject) is used
// to cache the session key for the request token exchange.
type AppToken struct {
	Subject        string `attr:"s"`
	AuthzSubject   string `attr:"sz"`
	LastUsed       int64  `attr:"lt,optional"`
	SessionKey     []byte `attr:"k"`
	InitialFactors string `attr:"ia"`
	SessionFactors string `attr:"sf"`
	LOA            uint32 `attr:"loa,optional"`
	Creation       int64  `attr:"ct"`
	Expiration     int64  `attr:"et"`
}

// Kind returns App.
func (*AppToken) Kind() Type { return App }

func (t *AppToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// CredToken carries a credential (an opaque blob from the Kerberos
// layer) for a service, given to an application server by the WebKDC.
type CredToken struct {
	Subject    string `attr:"s"`
	Type       string `attr:"crt"`
	Service    string `attr:"crs"`
	Data       []byte `attr:"crd"`
	Creation   int64  `attr:"ct"`
	Expiration int64  `attr:"et"`
}

// Kind returns Cred.
func (*CredToken) Kind() Type { return Cred }

func (t *CredToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// ErrorToken reports a WebKDC failure back to a WebAuth application
// server. Error tokens are never checked for expiration.
type ErrorToken struct {
	Code     uint32 `attr:"ec"`
	Message  string `attr:"em"`
	Creation int64  `attr:"ct"`
}

// Kind returns Error.
func (*ErrorToken) Kind() Type { return Error }

func (t *ErrorToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// IDToken conveys a user's identity from the WebKDC to an application
// server. The Auth field selects the authentication mechanism: "webkdc"
// carries the subject directly, "krb5" carries an opaque authenticator.
type IDToken struct {
	Subject        string `attr:"s"`
	AuthzSubject   string `attr:"sz"`
	Auth           string `attr:"sa"`
	AuthData       []byte `attr:"sad"`
	InitialFactors string `attr:"ia"`
	SessionFactors string `attr:"sf"`
	LOA            uint32 `attr:"loa,optional"`
	Creation       int64  `attr:"ct"`
	Expiration     int64  `attr:"et"`
}

// Kind returns ID.
func (*IDToken) Kind() Type { return ID }

func (t *IDToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// LoginToken carries the user's login credentials from the front-end
// login service to the WebKDC. Exactly one of Password or OTP is set.
type LoginToken struct {
	Username string `attr:"u"`
	Password string `attr:"p"`
	OTP      string `attr:"otp"`
	OTPType  string `attr:"ott"`
	Creation int64  `attr:"ct"`
}

// Kind returns Login.
func (*LoginToken) Kind() Type { return Login }

func (t *LoginToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// ProxyToken lets an application server request further tokens from the
// WebKDC on the user's behalf. The WebKDCProxy field is an embedded
// webkdc-proxy token, opaque at this layer.
type ProxyToken struct {
	Subject        string `attr:"s"`
	AuthzSubject   string `attr:"sz"`
	Type           string `attr:"pt"`
	WebKDCProxy    []byte `attr:"wt"`
	InitialFactors string `attr:"ia"`
	SessionFactors string `attr:"sf"`
	LOA            uint32 `attr:"loa,optional"`
	Creation       int64  `attr:"ct"`
	Expiration     int64  `attr:"et"`
}

// Kind returns Proxy.
func (*ProxyToken) Kind() Type { return Proxy }

func (t *ProxyToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// RequestToken is sent by an application server to the WebKDC to start
// an authentication exchange, either asking for an id or proxy token or
// carrying a WebKDC command.
type RequestToken struct {
	Type            string `attr:"rtt"`
	Auth            string `attr:"sa"`
	ProxyType       string `attr:"pt"`
	State           []byte `attr:"as"`
	ReturnURL       string `attr:"ru"`
	Options         string `attr:"o"`
	InitialFactors  string `attr:"ia"`
	SessionFactors  string `attr:"sf"`
	Command         string `attr:"cmd"`
	Creation        int64  `attr:"ct"`
}

// Kind returns Request.
func (*RequestToken) Kind() Type { return Request }

func (t *RequestToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// WebKDCFactorToken records additional authentication factors for a
// user, stored in a long-lived browser cookie.
type WebKDCFactorToken struct {
	Subject        string `attr:"s"`
	InitialFactors string `attr:"ia"`
	SessionFactors string `attr:"sf"`
	Creation       int64  `attr:"ct"`
	Expiration     int64  `attr:"et"`
}

// Kind returns WebKDCFactor.
func (*WebKDCFactorToken) Kind() Type { return WebKDCFactor }

func (t *WebKDCFactorToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// WebKDCProxyToken stores login state in the WebKDC realm, created when
// a user authenticates to the WebKDC. The Data blob is the underlying
// credential for proxy type "krb5" and is opaque here.
type WebKDCProxyToken struct {
	Subject        string `attr:"s"`
	ProxyType      string `attr:"pt"`
	ProxySubject   string `attr:"ps"`
	Data           []byte `attr:"pd"`
	InitialFactors string `attr:"ia"`
	LOA            uint32 `attr:"loa,optional"`
	Creation       int64  `attr:"ct"`
	Expiration     int64  `attr:"et"`
}

// Kind returns WebKDCProxy.
func (*WebKDCProxyToken) Kind() Type { return WebKDCProxy }

func (t *WebKDCProxyToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// WebKDCServiceToken holds the session key a WebAuth application server
// shares with the WebKDC; the server presents it with each request.
type WebKDCServiceToken struct {
	Subject    string `attr:"s"`
	SessionKey []byte `attr:"k"`
	Creation   int64  `attr:"ct"`
	Expiration int64  `attr:"et"`
}

// Kind returns WebKDCService.
func (*WebKDCServiceToken) Kind() Type { return WebKDCService }

func (t *WebKDCServiceToken) stamp(now int64) {
	if t.Creation == 0 {
		t.Creation = now
	}
}

// newToken returns a zero record of the given kind, or nil for kinds
// that have no record type.
func newToken(typ Type) Token {
	switch typ {
	case App:
		return &AppToken{}
	case Cred:
		return &CredToken{}
	case Error:
		return &ErrorToken{}
	case ID:
		return &IDToken{}
	case Login:
		return &LoginToken{}
	case Proxy:
		return &ProxyToken{}
	case Request:
		return &RequestToken{}
	case WebKDCFactor:
		return &WebKDCFactorToken{}
	case WebKDCProxy:
		return &WebKDCProxyToken{}
	case WebKDCService:
		return &WebKDCServiceToken{}
	}
	return nil
}
