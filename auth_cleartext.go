package mysql

// clearPasswordPlugin implements mysql_clear_password (§4.3): the password
// is sent as-is, so it is only ever started when the transport is already
// TLS-protected — enforced here rather than left to the caller, per
// ErrInsecureClearPassword's contract in errors.go.
type clearPasswordPlugin struct{}

func init() { registerAuthPlugin(clearPasswordPlugin{}) }

func (clearPasswordPlugin) name() string { return "mysql_clear_password" }

func (clearPasswordPlugin) start(authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	if !tlsActive {
		return nil, ErrInsecureClearPassword
	}
	if !params.AllowCleartextPasswords {
		return nil, &AuthError{Msg: "mysql_clear_password is disallowed by Params.AllowCleartextPasswords"}
	}
	return append([]byte(params.Password), 0), nil
}
