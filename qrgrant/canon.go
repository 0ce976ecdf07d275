package qrgrant

import (
	"encoding/json"
	"strconv"
	"strings"
)

// canonicalHeader renders the header segment as canonical JSON: lexical
// key order, no whitespace, integers as bare digits. alg and kid are the
// only two fields and are already in lexical order.
func canonicalHeader(kid string) ([]byte, error) {
	kidJSON, err := json.Marshal(kid)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString(`{"alg":"`)
	b.WriteString(algEdDSA)
	b.WriteString(`","kid":`)
	b.Write(kidJSON)
	b.WriteString(`}`)
	return []byte(b.String()), nil
}

// canonicalPayload renders the payload segment as canonical JSON. Field
// order is fixed to lexical order of the JSON keys: activity_id,
// child_id, dev, exp, iat, minutes, nonce, type. Encoders must emit
// exactly this byte sequence or signatures verified by a conforming
// decoder will break.
func canonicalPayload(p payload) ([]byte, error) {
	devJSON, err := json.Marshal(p.Device)
	if err != nil {
		return nil, err
	}
	nonceJSON, err := json.Marshal(p.Nonce)
	if err != nil {
		return nil, err
	}
	typeJSON, err := json.Marshal(p.Type)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`{"activity_id":`)
	b.WriteString(strconv.FormatUint(p.ActivityID, 10))
	b.WriteString(`,"child_id":`)
	b.WriteString(strconv.FormatUint(p.ChildID, 10))
	b.WriteString(`,"dev":`)
	b.Write(devJSON)
	b.WriteString(`,"exp":`)
	b.WriteString(strconv.FormatInt(p.ExpiresAt, 10))
	b.WriteString(`,"iat":`)
	b.WriteString(strconv.FormatInt(p.IssuedAt, 10))
	b.WriteString(`,"minutes":`)
	b.WriteString(strconv.FormatUint(uint64(p.Minutes), 10))
	b.WriteString(`,"nonce":`)
	b.Write(nonceJSON)
	b.WriteString(`,"type":`)
	b.Write(typeJSON)
	b.WriteString(`}`)
	return []byte(b.String()), nil
}
