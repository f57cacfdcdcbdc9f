package oauth1

// Strategy produces the Authorization header value for a request. The
// params are the query and form values the request will carry.
type Strategy interface {
	Authorization(method, uri string, params Params) string
}

// Credentials are the four OAuth1 secrets of a user context. Token and
// TokenSecret are empty before the access token has been obtained.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
}

// SigningKey returns the HMAC key for these credentials.
func (c Credentials) SigningKey() string {
	return SigningKey(c.ConsumerSecret, c.TokenSecret)
}

// UserAuth signs every request with user credentials.
type UserAuth struct {
	creds  Credentials
	signer *Signer
}

// NewUserAuth creates a user-context strategy. A nil signer gets defaults.
func NewUserAuth(creds Credentials, signer *Signer) *UserAuth {
	if signer == nil {
		signer = NewSigner(SignerConfig{})
	}
	return &UserAuth{creds: creds, signer: signer}
}

// Authorization signs the request and returns "OAuth ...".
func (u *UserAuth) Authorization(method, uri string, params Params) string {
	var header Params
	if u.creds.Token != "" {
		header = Params{{Name: "oauth_token", Value: u.creds.Token}}
	}
	return u.signer.Sign(u.creds.SigningKey(), u.creds.ConsumerKey, header, method, uri, params)
}

// BearerAuth presents an application-only OAuth2 bearer token.
type BearerAuth struct {
	token string
}

// NewBearerAuth creates an application-only strategy.
func NewBearerAuth(token string) *BearerAuth {
	return &BearerAuth{token: token}
}

// Authorization returns "Bearer <token>" regardless of the request.
func (b *BearerAuth) Authorization(string, string, Params) string {
	return "Bearer " + b.token
}
