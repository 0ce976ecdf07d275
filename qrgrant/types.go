// Package qrgrant implements QRGrantCodec (C2): the signed, offline
// authorization token printed or scanned as a QR code. A token is three
// base64url-without-padding segments, HEADER.PAYLOAD.SIGNATURE, where the
// signature covers the UTF-8 bytes of "HEADER.PAYLOAD" exactly as
// transmitted, before either segment is base64url-decoded.
package qrgrant

import "time"

// Type enumerates the kinds of authorization a Grant can carry.
type Type string

const (
	TypeExtension Type = "extension"
	TypeQuota     Type = "quota"
	TypeEarlier   Type = "earlier"
	TypeLiftBan   Type = "lift_ban"
)

// MaxMinutes is the largest number of minutes a single grant may carry.
const MaxMinutes = 480

// Grant is a signed authorization record (spec §3). ChildID and
// ActivityID are opaque integer identifiers; Minutes bounds [0, 480].
// DeviceID empty means "any device".
type Grant struct {
	Type       Type
	ChildID    uint64
	ActivityID uint64
	Minutes    uint16
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Nonce      string
	DeviceID   string
	KeyID      string
}

// IsExpired reports whether now is strictly after the grant's expiry.
func (g *Grant) IsExpired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}

// MatchesDevice reports whether the grant authorizes deviceID. An empty
// DeviceID on the grant matches any device, including an empty one.
func (g *Grant) MatchesDevice(deviceID string) bool {
	return g.DeviceID == "" || g.DeviceID == deviceID
}

// MatchesChild reports whether the grant is for childID.
func (g *Grant) MatchesChild(childID uint64) bool {
	return g.ChildID == childID
}

// header is the canonical JSON header segment. Field order in the
// struct is irrelevant; canonicalHeader below fixes the wire order.
type header struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

// payload is the canonical JSON payload segment (spec §4.2).
type payload struct {
	Type       string `json:"type"`
	ChildID    uint64 `json:"child_id"`
	ActivityID uint64 `json:"activity_id"`
	Minutes    uint16 `json:"minutes"`
	IssuedAt   int64  `json:"iat"`
	ExpiresAt  int64  `json:"exp"`
	Nonce      string `json:"nonce"`
	Device     string `json:"dev"`
}

const algEdDSA = "EdDSA"
