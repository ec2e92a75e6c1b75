package mysql

import "fmt"

// sha256PasswordPlugin implements sha256_password (§4.3): unlike
// caching_sha2_password it never accepts a fast-auth cache hit. Like
// caching_sha2_password it sends the cleartext password only over TLS and
// RSA-encrypts it otherwise.
type sha256PasswordPlugin struct{}

func init() { registerAuthPlugin(sha256PasswordPlugin{}) }

func (sha256PasswordPlugin) name() string { return "sha256_password" }

func (sha256PasswordPlugin) start(authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	if params.Password == "" {
		return []byte{0}, nil
	}
	if tlsActive {
		return append([]byte(params.Password), 0), nil
	}
	if params.ServerPubKey == nil {
		// Ask the server for its public key on the next AuthMoreData round.
		return []byte{1}, nil
	}
	return encryptPassword(params.Password, authData, params.ServerPubKey)
}

func (sha256PasswordPlugin) handleMoreData(pio *packetIO, moreData []byte, authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	pubKey, err := parsePEMPublicKey(moreData)
	if err != nil {
		return nil, err
	}
	enc, err := encryptPassword(params.Password, authData, pubKey)
	if err != nil {
		return nil, fmt.Errorf("mysql: failed to encrypt password with server key: %w", err)
	}
	if err := pio.writePacket(enc); err != nil {
		return nil, fmt.Errorf("mysql: failed to send encrypted password: %w", err)
	}
	return pio.readPacket()
}
