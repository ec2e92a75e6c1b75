package mysql

import "fmt"

// dialogPlugin implements MariaDB's PAM "dialog" plugin (§4.3 supplemental
// plugins): the server can prompt for any number of passwords in sequence,
// each delivered as an AuthMoreData round; Params.OtherPasswords supplies
// the prompts beyond the primary Password.
type dialogPlugin struct{}

func init() { registerAuthPlugin(dialogPlugin{}) }

func (dialogPlugin) name() string { return "dialog" }

func (dialogPlugin) start(authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	if !params.AllowDialogPasswords {
		return nil, &AuthError{Msg: "dialog auth is disallowed by Params.AllowDialogPasswords"}
	}
	return append([]byte(params.Password), 0), nil
}

func (dialogPlugin) handleMoreData(pio *packetIO, moreData []byte, authData []byte, params *Params, tlsActive bool) ([]byte, error) {
	for i := 0; ; i++ {
		var resp []byte
		if i < len(params.OtherPasswords) {
			resp = append([]byte(params.OtherPasswords[i]), 0)
		} else {
			resp = []byte{0}
		}

		if err := pio.writePacket(resp); err != nil {
			return nil, fmt.Errorf("mysql: failed to send dialog response: %w", err)
		}
		data, err := pio.readPacket()
		if err != nil {
			return nil, fmt.Errorf("mysql: failed to read dialog response: %w", err)
		}
		if len(data) == 0 {
			return nil, ErrMalformedPacket
		}

		switch data[0] {
		case iOK, iERR, iEOF:
			return data, nil
		default:
			// another prompt: moreData for the next round is data[1:],
			// but the dialog plugin doesn't need its contents.
			continue
		}
	}
}
