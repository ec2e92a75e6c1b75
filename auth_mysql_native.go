package mysql

import "crypto/sha1"

// nativePasswordPlugin implements mysql_native_password (§4.3): a single
// SHA1 challenge-response with no further round trips.
type nativePasswordPlugin struct{}

func init() { registerAuthPlugin(nativePasswordPlugin{}) }

func (nativePasswordPlugin) name() string { return "mysql_native_password" }

func (nativePasswordPlugin) start(authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	if !params.AllowNativePasswords {
		return nil, &AuthError{Msg: "mysql_native_password is disallowed by Params.AllowNativePasswords"}
	}
	if params.Password == "" {
		return nil, nil
	}
	return scrambleNativePassword(authData[:20], params.Password), nil
}

// scrambleNativePassword computes SHA1(scramble+SHA1(SHA1(password))) XOR
// SHA1(password), the 4.1+ native password token (§4.3).
func scrambleNativePassword(scramble []byte, password string) []byte {
	if len(password) == 0 {
		return nil
	}

	crypt := sha1.New()
	crypt.Write([]byte(password))
	stage1 := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(stage1)
	hash := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(scramble)
	crypt.Write(hash)
	token := crypt.Sum(nil)

	for i := range token {
		token[i] ^= stage1[i]
	}
	return token
}
