package qrgrant

import (
	"encoding/json"

	"github.com/allow2/offlinecore/errs"
)

func parseHeader(raw []byte) (header, string, error) {
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return header{}, "", errs.New(errs.Malformed, "qrgrant.parseHeader", err)
	}
	return h, h.Kid, nil
}

func parsePayload(raw []byte) (payload, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return payload{}, errs.New(errs.Malformed, "qrgrant.parsePayload", err)
	}
	return p, nil
}
