package mysql

import (
	"crypto/sha512"

	"filippo.io/edwards25519"
)

// clientEd25519Plugin implements client_ed25519 (§4.3 supplemental
// plugins), MariaDB's Ed25519-based signature authentication. It has no
// AuthMoreData round: the signature is the entire response.
type clientEd25519Plugin struct{}

func init() { registerAuthPlugin(clientEd25519Plugin{}) }

func (clientEd25519Plugin) name() string { return "client_ed25519" }

func (clientEd25519Plugin) start(authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	h := sha512.Sum512([]byte(params.Password))

	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, err
	}
	A := (&edwards25519.Point{}).ScalarBaseMult(s)

	mh := sha512.New()
	mh.Write(h[32:])
	mh.Write(authData)
	r, err := edwards25519.NewScalar().SetUniformBytes(mh.Sum(nil))
	if err != nil {
		return nil, err
	}

	R := (&edwards25519.Point{}).ScalarBaseMult(r)

	kh := sha512.New()
	kh.Write(R.Bytes())
	kh.Write(A.Bytes())
	kh.Write(authData)
	k, err := edwards25519.NewScalar().SetUniformBytes(kh.Sum(nil))
	if err != nil {
		return nil, err
	}

	S := k.MultiplyAdd(k, s, r)
	return append(R.Bytes(), S.Bytes()...), nil
}
