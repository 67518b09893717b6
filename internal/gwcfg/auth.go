package gwcfg

import "fmt"

// AuthType names the active arm of an Auth value.
type AuthType int

const (
	AuthNone AuthType = iota
	AuthBasic
	AuthBearer
	AuthToken
	AuthAPIKey
)

var authTypeNames = map[AuthType]string{
	AuthNone:   "none",
	AuthBasic:  "basic",
	AuthBearer: "bearer",
	AuthToken:  "token",
	AuthAPIKey: "apikey",
}

func (t AuthType) String() string {
	if s, ok := authTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("AuthType(%d)", int(t))
}

// ParseAuthType maps wire text to an auth type.
func ParseAuthType(s string) (AuthType, bool) {
	for t, name := range authTypeNames {
		if name == s {
			return t, true
		}
	}
	return AuthNone, false
}

// Auth is the credential union used by the remote-config and HTTP channels.
// Only the fields of the active arm are ever set; the zero value is AuthNone.
type Auth struct {
	kind   AuthType
	user   string
	secret string
}

// NoAuth returns the empty credential.
func NoAuth() Auth {
	return Auth{}
}

// BasicAuth returns a user/password credential.
func BasicAuth(user, pass string) Auth {
	return Auth{kind: AuthBasic, user: user, secret: pass}
}

// BearerAuth returns a bearer-token credential.
func BearerAuth(token string) Auth {
	return Auth{kind: AuthBearer, secret: token}
}

// TokenAuth returns a "Token <value>" credential.
func TokenAuth(token string) Auth {
	return Auth{kind: AuthToken, secret: token}
}

// APIKeyAuth returns an API-key credential.
func APIKeyAuth(key string) Auth {
	return Auth{kind: AuthAPIKey, secret: key}
}

// Type returns the active arm.
func (a Auth) Type() AuthType {
	return a.kind
}

// Basic returns the user and password when the basic arm is active.
func (a Auth) Basic() (user, pass string, ok bool) {
	if a.kind != AuthBasic {
		return "", "", false
	}
	return a.user, a.secret, true
}

// Bearer returns the token when the bearer arm is active.
func (a Auth) Bearer() (string, bool) {
	if a.kind != AuthBearer {
		return "", false
	}
	return a.secret, true
}

// Token returns the token when the token arm is active.
func (a Auth) Token() (string, bool) {
	if a.kind != AuthToken {
		return "", false
	}
	return a.secret, true
}

// APIKey returns the key when the api-key arm is active.
func (a Auth) APIKey() (string, bool) {
	if a.kind != AuthAPIKey {
		return "", false
	}
	return a.secret, true
}

// Secret returns the password, token or key of the active arm.
func (a Auth) Secret() string {
	return a.secret
}

// WithSecret returns a copy of a with the secret of the active arm replaced.
// For AuthNone it returns a unchanged.
func (a Auth) WithSecret(secret string) Auth {
	if a.kind == AuthNone {
		return a
	}
	a.secret = secret
	return a
}

// String renders the credential without its secret.
func (a Auth) String() string {
	if a.kind == AuthBasic {
		return fmt.Sprintf("%s(user=%s)", a.kind, a.user)
	}
	return a.kind.String()
}
