// Package accept implements the composed accept-path spec §4.3 and §4.4
// describe but QRGrantCodec and VoiceCodeProtocol deliberately don't:
// signature verification, expiry, audience, and replay checks, with the
// nonce recorded in the same critical section as acceptance.
package accept

import (
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/deficit"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/nonceledger"
	"github.com/allow2/offlinecore/qrgrant"
	"github.com/allow2/offlinecore/voicecode"
)

// Grant verifies token, then checks expiry, device and child audience,
// and nonce replay, in that order, before recording the nonce (spec
// §4.3: "accepted iff verify succeeds AND !expired AND
// !contains(nonce); record(nonce, now) in the same critical section").
// deviceID and childID are the accepting device's own identity; pass ""
// / 0 to skip the corresponding audience check.
func Grant(token string, verifying sagecrypto.KeyPair, provider sagecrypto.Provider, ledger *nonceledger.Ledger, deviceID string, childID uint64, now time.Time) (*qrgrant.Grant, error) {
	const op = "accept.Grant"

	grant, err := qrgrant.ParseAndVerify(token, verifying, provider)
	if err != nil {
		return nil, err
	}
	if grant.IsExpired(now) {
		return nil, errs.New(errs.Expired, op, nil)
	}
	if deviceID != "" && !grant.MatchesDevice(deviceID) {
		return nil, errs.New(errs.WrongDevice, op, nil)
	}
	if childID != 0 && !grant.MatchesChild(childID) {
		return nil, errs.New(errs.WrongChild, op, nil)
	}
	if ledger.Contains(grant.Nonce) {
		return nil, errs.New(errs.Replay, op, nil)
	}
	ledger.Record(grant.Nonce, now)
	return grant, nil
}

// VoiceApproval validates approvalCode against codes, then applies each
// code that hasn't already been consumed: skips nonce-replayed and
// Unsupported (multi-code/reserved) codes, refuses all of them with
// DeficitExceeded once childID has hit the deficit ceiling (spec §4.5:
// "when is_exceeded, the system must refuse further voice-code-granted
// extensions"), and otherwise records the code's nonce and adds its
// minutes to childID's deficit (spec §4.4: "the nonce embedded in each
// request code MUST be added to the NonceLedger on successful
// approval"). It returns the codes actually applied.
func VoiceApproval(provider sagecrypto.Provider, sharedKey []byte, codes []voicecode.Request, approvalCode string, nonces *nonceledger.Ledger, deficits *deficit.Ledger, childID uint64, now time.Time) ([]voicecode.Request, error) {
	const op = "accept.VoiceApproval"

	raw := make([]string, len(codes))
	for i, c := range codes {
		raw[i] = c.Code()
	}
	if !voicecode.ValidateApprovalCode(provider, sharedKey, raw, approvalCode, now.Unix()) {
		return nil, errs.New(errs.BadSignature, op, nil)
	}
	if deficits.IsExceeded(childID) {
		return nil, errs.New(errs.DeficitExceeded, op, nil)
	}

	applied := make([]voicecode.Request, 0, len(codes))
	for _, c := range codes {
		if nonces.Contains(c.Code()) {
			continue
		}
		if err := voicecode.Apply(c); err != nil {
			continue
		}
		nonces.Record(c.Code(), now)
		deficits.Add(childID, c.Minutes*60)
		applied = append(applied, c)
	}
	return applied, nil
}
