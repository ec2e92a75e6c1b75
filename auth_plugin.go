package mysql

// authPlugin computes the authentication response bytes for one named
// plugin (§4.3). start is called once, with the scramble the server handed
// the client (either the initial handshake's scramble or an
// AuthSwitchRequest's fresh one).
type authPlugin interface {
	name() string
	start(authData []byte, params *Params, tlsActive bool) ([]byte, error)
}

// authMoreDataHandler is implemented by plugins whose negotiation continues
// past the first response via one or more AuthMoreData round trips (§4.5
// rule 6): caching_sha2_password, sha256_password, parsec and dialog. It
// owns the rest of its wire sub-protocol and returns the terminal (OK/ERR)
// packet once done.
type authMoreDataHandler interface {
	handleMoreData(pio *packetIO, moreData []byte, authData []byte, params *Params, tlsActive bool) ([]byte, error)
}

var authPlugins = map[string]authPlugin{}

func registerAuthPlugin(p authPlugin) { authPlugins[p.name()] = p }
