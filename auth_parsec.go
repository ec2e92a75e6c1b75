package mysql

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// parsecPlugin implements parsec (§4.3 supplemental plugins): a
// PBKDF2-derived Ed25519 signature over the server scramble and a
// client-generated nonce, with the derivation parameters (salt, iteration
// factor) delivered via an AuthMoreData "ext-salt" round.
type parsecPlugin struct{}

func init() { registerAuthPlugin(parsecPlugin{}) }

func (parsecPlugin) name() string { return "parsec" }

func (parsecPlugin) start(authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	return []byte{}, nil
}

func (parsecPlugin) handleMoreData(pio *packetIO, moreData []byte, authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	resp, err := parsecSignExtSalt(moreData, authData, params.Password)
	if err != nil {
		return nil, fmt.Errorf("mysql: parsec auth failed: %w", err)
	}
	if err := pio.writePacket(resp); err != nil {
		return nil, fmt.Errorf("mysql: failed to send parsec auth response: %w", err)
	}
	return pio.readPacket()
}

// parsecSignExtSalt parses a parsec "ext-salt" ('P' + iteration factor +
// salt), derives an Ed25519 signing key via PBKDF2-HMAC-SHA512, and signs
// serverScramble||clientNonce, returning clientNonce||signature.
func parsecSignExtSalt(extSalt, serverScramble []byte, password string) ([]byte, error) {
	if len(extSalt) < 3 {
		return nil, &AuthError{Msg: "parsec ext-salt too short"}
	}
	if extSalt[0] != 'P' {
		return nil, &AuthError{Msg: "parsec ext-salt has invalid prefix"}
	}

	iterationFactor := int(extSalt[1])
	if iterationFactor < 0 || iterationFactor > 3 {
		return nil, &AuthError{Msg: "parsec ext-salt has invalid iteration factor"}
	}
	iterations := 1024 << iterationFactor

	salt := extSalt[2:]
	if len(salt) == 0 {
		return nil, &AuthError{Msg: "parsec ext-salt has empty salt"}
	}

	clientNonce := make([]byte, 32)
	if _, err := rand.Read(clientNonce); err != nil {
		return nil, fmt.Errorf("failed to generate client nonce: %w", err)
	}

	derivedKey := pbkdf2.Key([]byte(password), salt, iterations, ed25519.SeedSize, sha512.New)

	message := make([]byte, 0, len(serverScramble)+len(clientNonce))
	message = append(message, serverScramble...)
	message = append(message, clientNonce...)

	privateKey := ed25519.NewKeyFromSeed(derivedKey[:ed25519.SeedSize])
	signature := ed25519.Sign(privateKey, message)

	response := make([]byte, 0, len(clientNonce)+len(signature))
	response = append(response, clientNonce...)
	response = append(response, signature...)
	return response, nil
}
