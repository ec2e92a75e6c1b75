package mysql

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// Authentication (§4.3, §4.5 rules 3-6): negotiates the initial plugin named
// by the server's handshake, and loops through AuthSwitchRequest/AuthMoreData
// rounds until a terminal OK or ERR packet arrives.

// computeInitialAuthResponse builds the AuthResponse field of
// HandshakeResponse41 for the plugin the server's initial handshake named.
func computeInitialAuthResponse(pluginName string, authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	plugin, ok := authPlugins[pluginName]
	if !ok {
		return nil, ErrUnknownAuthPlugin
	}
	return plugin.start(authData, params, tlsActive)
}

// finishAuth drives the post-HandshakeResponse41 negotiation to completion,
// reading from pio until a terminal OK or ERR packet arrives.
func finishAuth(pio *packetIO, capabilities ClientFlag, pluginName string, authData []byte, params *Params, tlsActive bool) (*OKPacket, error) {
	data, err := pio.readPacket()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case isOKPacket(data, capabilities):
			return parseOKPacket(data, capabilities)

		case len(data) > 0 && data[0] == iERR:
			se, perr := parseErrPacket(data, capabilities)
			if perr != nil {
				return nil, perr
			}
			return nil, se

		case len(data) > 0 && data[0] == iEOF:
			asr, perr := parseAuthSwitchRequest(data)
			if perr != nil {
				return nil, perr
			}
			plugin, ok := authPlugins[asr.PluginName]
			if !ok {
				return nil, ErrUnknownAuthPlugin
			}
			pluginName = asr.PluginName
			authData = asr.AuthData

			resp, serr := plugin.start(authData, params, tlsActive)
			if serr != nil {
				return nil, serr
			}
			if err := pio.writePacket(resp); err != nil {
				return nil, err
			}
			if data, err = pio.readPacket(); err != nil {
				return nil, err
			}

		case isAuthMoreData(data):
			plugin, ok := authPlugins[pluginName]
			if !ok {
				return nil, ErrUnknownAuthPlugin
			}
			handler, ok := plugin.(authMoreDataHandler)
			if !ok {
				return nil, &AuthError{Msg: fmt.Sprintf("plugin %q does not support AuthMoreData", pluginName)}
			}
			if data, err = handler.handleMoreData(pio, data[1:], authData, params, tlsActive); err != nil {
				return nil, err
			}

		default:
			return nil, ErrMalformedPacket
		}
	}
}

// requestServerPublicKey asks the server for its RSA public key (the
// caching_sha2_password/sha256_password "public key request" packet, a
// single byte 0x02) and parses the PEM response.
func requestServerPublicKey(pio *packetIO) (*rsa.PublicKey, error) {
	if err := pio.writePacket([]byte{2}); err != nil {
		return nil, fmt.Errorf("mysql: failed to request server public key: %w", err)
	}
	packet, err := pio.readPacket()
	if err != nil {
		return nil, fmt.Errorf("mysql: failed to read server public key: %w", err)
	}
	if len(packet) == 0 || packet[0] != iAuthMoreData {
		return nil, &AuthError{Msg: "unexpected packet type requesting server public key"}
	}
	return parsePEMPublicKey(packet[1:])
}

func parsePEMPublicKey(data []byte) (*rsa.PublicKey, error) {
	block, rest := pem.Decode(data)
	if block == nil {
		return nil, &AuthError{Msg: fmt.Sprintf("invalid PEM block in server public key response: %q", rest)}
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("mysql: failed to parse server public key: %w", err)
	}
	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, &AuthError{Msg: "server public key is not an RSA key"}
	}
	return rsaKey, nil
}

// encryptPassword XORs password (NUL-terminated) with the repeated seed and
// encrypts the result with RSA-OAEP/SHA1, used by caching_sha2_password's
// and sha256_password's full-authentication path over a plaintext channel.
func encryptPassword(password string, seed []byte, pub *rsa.PublicKey) ([]byte, error) {
	plain := make([]byte, len(password)+1)
	copy(plain, password)
	for i := range plain {
		plain[i] ^= seed[i%len(seed)]
	}
	return rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, plain, nil)
}

// legacy pre-4.1 password hashing (mysql_old_password), ported from
// MariaDB's my_rnd.c via the teacher's crypt323.go.

type my323Rnd struct{ seed1, seed2 uint32 }

const my323RndMaxVal = 0x3FFFFFFF

func newMy323Rnd(seed1, seed2 uint32) *my323Rnd {
	return &my323Rnd{seed1: seed1 % my323RndMaxVal, seed2: seed2 % my323RndMaxVal}
}

func (r *my323Rnd) nextByte() byte {
	r.seed1 = (r.seed1*3 + r.seed2) % my323RndMaxVal
	r.seed2 = (r.seed1 + r.seed2 + 33) % my323RndMaxVal
	return byte(uint64(r.seed1) * 31 / my323RndMaxVal)
}

func pwHash323(password []byte) (result [2]uint32) {
	var add uint32 = 7
	result[0] = 1345345333
	result[1] = 0x12345671

	for _, c := range password {
		if c == ' ' || c == '\t' {
			continue
		}
		tmp := uint32(c)
		result[0] ^= (((result[0] & 63) + add) * tmp) + (result[0] << 8)
		result[1] += (result[1] << 8) ^ result[0]
		add += tmp
	}
	result[0] &= 0x7FFFFFFF
	result[1] &= 0x7FFFFFFF
	return
}

func scrambleOldPassword(scramble []byte, password string) []byte {
	scramble = scramble[:8]
	hashPw := pwHash323([]byte(password))
	hashSc := pwHash323(scramble)

	r := newMy323Rnd(hashPw[0]^hashSc[0], hashPw[1]^hashSc[1])
	var out [8]byte
	for i := range out {
		out[i] = r.nextByte() + 64
	}
	mask := r.nextByte()
	for i := range out {
		out[i] ^= mask
	}
	return out[:]
}
