package qrgrant

import (
	"encoding/base64"
	"strings"
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/internal/metrics"
)

func typeString(t Type) string {
	return string(t)
}

func typeFromString(s string) (Type, bool) {
	switch Type(s) {
	case TypeExtension, TypeQuota, TypeEarlier, TypeLiftBan:
		return Type(s), true
	default:
		return "", false
	}
}

// Generate builds and signs a QR grant token (spec §4.2). It fails with
// InvalidGrant if minutes exceeds MaxMinutes or expires_at <= issued_at.
func Generate(g Grant, signing sagecrypto.KeyPair, provider sagecrypto.Provider, keyID string) (string, error) {
	const op = "qrgrant.Generate"

	if g.Minutes > MaxMinutes {
		return "", errs.New(errs.InvalidGrant, op, nil)
	}
	if !g.ExpiresAt.After(g.IssuedAt) {
		return "", errs.New(errs.InvalidGrant, op, nil)
	}

	hdr, err := canonicalHeader(keyID)
	if err != nil {
		return "", errs.New(errs.Malformed, op, err)
	}

	pl, err := canonicalPayload(payload{
		Type:       typeString(g.Type),
		ChildID:    g.ChildID,
		ActivityID: g.ActivityID,
		Minutes:    g.Minutes,
		IssuedAt:   g.IssuedAt.Unix(),
		ExpiresAt:  g.ExpiresAt.Unix(),
		Nonce:      g.Nonce,
		Device:     g.DeviceID,
	})
	if err != nil {
		return "", errs.New(errs.Malformed, op, err)
	}

	hdrSeg := base64.RawURLEncoding.EncodeToString(hdr)
	plSeg := base64.RawURLEncoding.EncodeToString(pl)

	signingInput := hdrSeg + "." + plSeg
	sig, err := provider.Sign(signing, []byte(signingInput))
	if err != nil {
		return "", errs.New(errs.Malformed, op, err)
	}
	sigSeg := base64.RawURLEncoding.EncodeToString(sig)

	token := signingInput + "." + sigSeg
	metrics.GrantsIssued.Inc()
	metrics.GrantTokenSize.Observe(float64(len(token)))
	return token, nil
}

// ParseAndVerify decodes and signature-checks token against verifying. It
// does not check expiry or nonce consumption — callers must apply
// Grant.IsExpired and the NonceLedger themselves.
func ParseAndVerify(token string, verifying sagecrypto.KeyPair, provider sagecrypto.Provider) (*Grant, error) {
	const op = "qrgrant.ParseAndVerify"

	start := time.Now()
	status := "malformed"
	defer func() {
		metrics.GrantsVerified.WithLabelValues(status).Inc()
		metrics.GrantVerificationDuration.Observe(time.Since(start).Seconds())
	}()

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errs.New(errs.Malformed, op, nil)
	}
	hdrSeg, plSeg, sigSeg := parts[0], parts[1], parts[2]

	hdrBytes, err := base64.RawURLEncoding.DecodeString(hdrSeg)
	if err != nil {
		return nil, errs.New(errs.Malformed, op, err)
	}
	plBytes, err := base64.RawURLEncoding.DecodeString(plSeg)
	if err != nil {
		return nil, errs.New(errs.Malformed, op, err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigSeg)
	if err != nil {
		return nil, errs.New(errs.Malformed, op, err)
	}

	hdr, kid, err := parseHeader(hdrBytes)
	if err != nil {
		return nil, err
	}
	if hdr.Alg != algEdDSA {
		status = "unsupported"
		return nil, errs.New(errs.Unsupported, op, nil)
	}

	signingInput := hdrSeg + "." + plSeg
	if err := provider.Verify(verifying, []byte(signingInput), sig); err != nil {
		status = "bad_signature"
		return nil, errs.New(errs.BadSignature, op, err)
	}

	pl, err := parsePayload(plBytes)
	if err != nil {
		return nil, err
	}

	grantType, ok := typeFromString(pl.Type)
	if !ok {
		return nil, errs.New(errs.Malformed, op, nil)
	}

	status = "accepted"
	return &Grant{
		Type:       grantType,
		ChildID:    pl.ChildID,
		ActivityID: pl.ActivityID,
		Minutes:    pl.Minutes,
		IssuedAt:   time.Unix(pl.IssuedAt, 0).UTC(),
		ExpiresAt:  time.Unix(pl.ExpiresAt, 0).UTC(),
		Nonce:      pl.Nonce,
		DeviceID:   pl.Device,
		KeyID:      kid,
	}, nil
}
