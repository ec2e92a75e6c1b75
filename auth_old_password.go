package mysql

// oldPasswordPlugin implements mysql_old_password, the pre-4.1 legacy hash
// (§4.3 supplemental plugins). It has no AuthMoreData round.
type oldPasswordPlugin struct{}

func init() { registerAuthPlugin(oldPasswordPlugin{}) }

func (oldPasswordPlugin) name() string { return "mysql_old_password" }

func (oldPasswordPlugin) start(authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	if !params.AllowOldPasswords {
		return nil, &AuthError{Msg: "mysql_old_password is disallowed by Params.AllowOldPasswords"}
	}
	if params.Password == "" {
		return nil, nil
	}
	return append(scrambleOldPassword(authData[:8], params.Password), 0), nil
}
