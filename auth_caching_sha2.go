package mysql

import (
	"crypto/sha256"
	"fmt"
)

// cachingSha2PasswordPlugin implements caching_sha2_password (§4.3): an
// initial SHA256 challenge-response, followed by an AuthMoreData round that
// is either a cache-hit confirmation or a request to complete full
// authentication (cleartext over TLS, RSA-OAEP otherwise).
type cachingSha2PasswordPlugin struct{}

func init() { registerAuthPlugin(cachingSha2PasswordPlugin{}) }

func (cachingSha2PasswordPlugin) name() string { return "caching_sha2_password" }

func (cachingSha2PasswordPlugin) start(authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	return scrambleSHA256Password(authData, params.Password), nil
}

func (p cachingSha2PasswordPlugin) handleMoreData(pio *packetIO, moreData []byte, authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	switch len(moreData) {
	case 0:
		// bare AuthMoreData with nothing further: the terminal packet
		// follows immediately.
		return pio.readPacket()

	case 1:
		switch moreData[0] {
		case 3: // fast-auth success: password verifier was cached
			return pio.readPacket()

		case 4: // full authentication required
			if tlsActive {
				if err := pio.writePacket(append([]byte(params.Password), 0)); err != nil {
					return nil, fmt.Errorf("mysql: failed to send cleartext password: %w", err)
				}
			} else {
				pubKey := params.ServerPubKey
				if pubKey == nil {
					var err error
					if pubKey, err = requestServerPublicKey(pio); err != nil {
						return nil, err
					}
				}
				enc, err := encryptPassword(params.Password, authData, pubKey)
				if err != nil {
					return nil, fmt.Errorf("mysql: failed to encrypt password: %w", err)
				}
				if err := pio.writePacket(enc); err != nil {
					return nil, fmt.Errorf("mysql: failed to send encrypted password: %w", err)
				}
			}
			return pio.readPacket()

		default:
			return nil, &AuthError{Msg: fmt.Sprintf("unknown caching_sha2_password auth state %d", moreData[0])}
		}

	default:
		return nil, ErrMalformedPacket
	}
}

// scrambleSHA256Password computes SHA256(password) XOR
// SHA256(SHA256(SHA256(password)), scramble), the caching_sha2_password
// fast-path token (§4.3).
func scrambleSHA256Password(scramble []byte, password string) []byte {
	if len(password) == 0 {
		return []byte{}
	}

	crypt := sha256.New()
	crypt.Write([]byte(password))
	message1 := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(message1)
	message1Hash := crypt.Sum(nil)

	crypt.Reset()
	crypt.Write(message1Hash)
	crypt.Write(scramble)
	message2 := crypt.Sum(nil)

	for i := range message1 {
		message1[i] ^= message2[i]
	}
	return message1
}
