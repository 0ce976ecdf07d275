package voicecode

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/internal/metrics"
)

// Bucket returns the 30-second time bucket containing nowUnix (spec
// §4.4).
func Bucket(nowUnix int64) int64 {
	return nowUnix / BucketSeconds
}

// canonicalMessage renders the approval-code signing input. The
// canonicalization ("v1|" + sorted codes joined by "|" + "|" + bucket)
// is this implementation's pinned resolution of the open question in
// spec §9: the source's byte layout was not documented anywhere in the
// visible interface.
func canonicalMessage(codes []string, bucket int64) []byte {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Strings(sorted)

	msg := "v1|" + strings.Join(sorted, "|") + "|" + fmt.Sprintf("%d", bucket)
	return []byte(msg)
}

// approvalCodeForBucket computes the 6-digit approval code for codes at
// the given bucket under sharedKey.
func approvalCodeForBucket(provider sagecrypto.Provider, sharedKey []byte, codes []string, bucket int64) string {
	tag := provider.HMACSHA256(sharedKey, canonicalMessage(codes, bucket))
	n := binary.BigEndian.Uint32(tag[:4])
	return fmt.Sprintf("%06d", n%1_000_000)
}

// GenerateApprovalCode computes the approval code for a set of request
// codes at the current time bucket (spec §4.4).
func GenerateApprovalCode(provider sagecrypto.Provider, sharedKey []byte, codes []string, nowUnix int64) string {
	return approvalCodeForBucket(provider, sharedKey, codes, Bucket(nowUnix))
}

// ValidateApprovalCode accepts approvalCode if it equals the
// HMAC-derived code for any bucket within DriftBuckets of now, tested in
// constant time (spec §4.4). The ±1 bucket window absorbs clock drift
// between parent and child devices.
func ValidateApprovalCode(provider sagecrypto.Provider, sharedKey []byte, codes []string, approvalCode string, nowUnix int64) bool {
	start := time.Now()
	defer func() { metrics.VoiceApprovalDuration.Observe(time.Since(start).Seconds()) }()

	stripped := stripNonDigits(approvalCode)
	if len(stripped) != 6 {
		metrics.VoiceApprovalsValidated.WithLabelValues("malformed").Inc()
		return false
	}

	bucket := Bucket(nowUnix)
	accepted := false
	for delta := -DriftBuckets; delta <= DriftBuckets; delta++ {
		candidate := approvalCodeForBucket(provider, sharedKey, codes, bucket+int64(delta))
		if sagecrypto.ConstantTimeEqual([]byte(candidate), []byte(stripped)) {
			accepted = true
		}
	}

	if accepted {
		metrics.VoiceApprovalsValidated.WithLabelValues("accepted").Inc()
	} else {
		metrics.VoiceApprovalsValidated.WithLabelValues("mismatch").Inc()
	}
	return accepted
}

// Apply reports whether req's type is currently supported by this
// implementation. Multi-code sequences (types 7-9) parse but are not
// applied; per spec §4.4/§9, callers must treat Apply's Unsupported
// result as "do not grant time", not as a parse failure.
func Apply(req Request) error {
	if req.Type.isMultiCode() {
		return errs.New(errs.Unsupported, "voicecode.Apply", nil)
	}
	if req.Type.isReservedSingle() {
		return errs.New(errs.Unsupported, "voicecode.Apply", nil)
	}
	return nil
}
