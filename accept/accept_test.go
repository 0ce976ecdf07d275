package accept

import (
	"testing"
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/deficit"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/nonceledger"
	"github.com/allow2/offlinecore/qrgrant"
	"github.com/allow2/offlinecore/voicecode"
	"github.com/stretchr/testify/require"
)

func testGrant() qrgrant.Grant {
	return qrgrant.Grant{
		Type:       qrgrant.TypeExtension,
		ChildID:    1001,
		ActivityID: 3,
		Minutes:    30,
		IssuedAt:   time.Unix(1_700_000_000, 0).UTC(),
		ExpiresAt:  time.Unix(1_700_003_600, 0).UTC(),
		Nonce:      "abc123",
		DeviceID:   "",
	}
}

// TestGrantHappyPathThenReplay mirrors spec §8's scenario 1: generate,
// sign, accept once, then a second accept of the same token is refused
// as a replay.
func TestGrantHappyPathThenReplay(t *testing.T) {
	provider := sagecrypto.NewProvider()
	kp, err := provider.GenerateKeypair()
	require.NoError(t, err)

	token, err := qrgrant.Generate(testGrant(), kp, provider, "k1")
	require.NoError(t, err)

	ledger := nonceledger.New(nonceledger.DefaultTTL)

	first := time.Unix(1_700_001_000, 0).UTC()
	grant, err := Grant(token, kp, provider, ledger, "", 1001, first)
	require.NoError(t, err)
	require.Equal(t, uint64(1001), grant.ChildID)
	require.True(t, ledger.Contains("abc123"))

	second := time.Unix(1_700_001_500, 0).UTC()
	_, err = Grant(token, kp, provider, ledger, "", 1001, second)
	require.True(t, errs.Is(err, errs.Replay))
}

func TestGrantRejectsExpired(t *testing.T) {
	provider := sagecrypto.NewProvider()
	kp, err := provider.GenerateKeypair()
	require.NoError(t, err)

	token, err := qrgrant.Generate(testGrant(), kp, provider, "k1")
	require.NoError(t, err)

	ledger := nonceledger.New(nonceledger.DefaultTTL)
	_, err = Grant(token, kp, provider, ledger, "", 1001, time.Unix(1_700_010_000, 0).UTC())
	require.True(t, errs.Is(err, errs.Expired))
}

func TestGrantRejectsWrongDevice(t *testing.T) {
	provider := sagecrypto.NewProvider()
	kp, err := provider.GenerateKeypair()
	require.NoError(t, err)

	g := testGrant()
	g.DeviceID = "phone-123"
	token, err := qrgrant.Generate(g, kp, provider, "k1")
	require.NoError(t, err)

	ledger := nonceledger.New(nonceledger.DefaultTTL)
	_, err = Grant(token, kp, provider, ledger, "tablet-456", 1001, time.Unix(1_700_001_000, 0).UTC())
	require.True(t, errs.Is(err, errs.WrongDevice))
}

func TestGrantRejectsWrongChild(t *testing.T) {
	provider := sagecrypto.NewProvider()
	kp, err := provider.GenerateKeypair()
	require.NoError(t, err)

	token, err := qrgrant.Generate(testGrant(), kp, provider, "k1")
	require.NoError(t, err)

	ledger := nonceledger.New(nonceledger.DefaultTTL)
	_, err = Grant(token, kp, provider, ledger, "", 9999, time.Unix(1_700_001_000, 0).UTC())
	require.True(t, errs.Is(err, errs.WrongChild))
}

func TestVoiceApprovalAppliesAndRecordsNonce(t *testing.T) {
	provider := sagecrypto.NewProvider()
	key := []byte("shared-key-shared-key-shared-ke")

	req, err := voicecode.GenerateRequestCode(provider, voicecode.RequestQuota, 3, 30)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0).UTC()
	approval := voicecode.GenerateApprovalCode(provider, key, []string{req.Code()}, now.Unix())

	nonces := nonceledger.New(nonceledger.DefaultTTL)
	deficits := deficit.New()

	applied, err := VoiceApproval(provider, key, []voicecode.Request{req}, approval, nonces, deficits, 1001, now)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	require.True(t, nonces.Contains(req.Code()))
	require.Equal(t, req.Minutes*60, deficits.Get(1001))
}

func TestVoiceApprovalRejectsBadCode(t *testing.T) {
	provider := sagecrypto.NewProvider()
	key := []byte("shared-key-shared-key-shared-ke")

	req, err := voicecode.GenerateRequestCode(provider, voicecode.RequestQuota, 3, 30)
	require.NoError(t, err)

	nonces := nonceledger.New(nonceledger.DefaultTTL)
	deficits := deficit.New()

	_, err = VoiceApproval(provider, key, []voicecode.Request{req}, "000000", nonces, deficits, 1001, time.Unix(1_700_000_000, 0).UTC())
	require.True(t, errs.Is(err, errs.BadSignature))
}

func TestVoiceApprovalRefusesWhenDeficitExceeded(t *testing.T) {
	provider := sagecrypto.NewProvider()
	key := []byte("shared-key-shared-key-shared-ke")

	req, err := voicecode.GenerateRequestCode(provider, voicecode.RequestQuota, 3, 30)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0).UTC()
	approval := voicecode.GenerateApprovalCode(provider, key, []string{req.Code()}, now.Unix())

	nonces := nonceledger.New(nonceledger.DefaultTTL)
	deficits := deficit.New()
	deficits.Add(1001, deficit.Ceiling)

	_, err = VoiceApproval(provider, key, []voicecode.Request{req}, approval, nonces, deficits, 1001, now)
	require.True(t, errs.Is(err, errs.DeficitExceeded))
}

func TestVoiceApprovalSkipsReplayedCode(t *testing.T) {
	provider := sagecrypto.NewProvider()
	key := []byte("shared-key-shared-key-shared-ke")

	req, err := voicecode.GenerateRequestCode(provider, voicecode.RequestQuota, 3, 30)
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0).UTC()
	approval := voicecode.GenerateApprovalCode(provider, key, []string{req.Code()}, now.Unix())

	nonces := nonceledger.New(nonceledger.DefaultTTL)
	deficits := deficit.New()
	nonces.Record(req.Code(), now)

	applied, err := VoiceApproval(provider, key, []voicecode.Request{req}, approval, nonces, deficits, 1001, now)
	require.NoError(t, err)
	require.Empty(t, applied)
	require.Equal(t, 0, deficits.Get(1001))
}
