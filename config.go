package mysql

import "crypto/rsa"

// Params is the caller-supplied connection boundary (§6): everything the
// Connection State Machine needs to complete a handshake and authenticate,
// with no notion of a DSN, an address, or how the Transport was obtained.
type Params struct {
	Username string
	Password string
	Database string

	// Collation is the charset/collation id sent in HandshakeResponse41.
	Collation byte

	// RequestedCapabilities are ORed with requiredCapabilities (§4.5 rule 2)
	// to form the client's advertised capability set; the effective set
	// used for the rest of the session is this AND the server's advertised
	// capabilities.
	RequestedCapabilities ClientFlag

	TLSMode TLSMode
	// ServerName is used for certificate verification when TLSMode requires
	// it; ignored otherwise.
	ServerName string

	// Auth plugin gating flags, mirroring the teacher's Config fields:
	// refusing an insecure plugin is a caller decision, not a hardcoded one.
	AllowNativePasswords    bool
	AllowCleartextPasswords bool
	AllowOldPasswords       bool
	AllowDialogPasswords    bool

	// OtherPasswords supplies the fallback prompts a "dialog" plugin
	// round-trip may ask for beyond the primary Password.
	OtherPasswords []string

	// ServerPubKey, when set, is used by caching_sha2_password/sha256_password
	// instead of requesting the server's RSA public key over the wire —
	// mirroring the teacher's RegisterServerPubKey escape hatch for
	// connections that cannot request it from an untrusted channel.
	ServerPubKey *rsa.PublicKey
}

func (p *Params) effectiveCapabilities() ClientFlag {
	return requiredCapabilities | p.RequestedCapabilities
}
