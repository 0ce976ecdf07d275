// Package voicecode implements VoiceCodeProtocol (C4): a symmetric,
// HMAC-based challenge/response encoded as two 6-digit decimal codes so
// a parent and child can authorize time over a phone call with no data
// connection on either end. A request code is read aloud by the child;
// an approval code is computed by the parent from a shared key and read
// back.
package voicecode

import "github.com/allow2/offlinecore/errs"

// RequestType is the first digit of a request code.
type RequestType int

const (
	RequestQuota   RequestType = 0
	RequestExtend  RequestType = 1
	RequestEarlier RequestType = 2
	RequestLiftBan RequestType = 3
	// 4-6 are reserved. 7-9 are reserved for multi-code sequences (spec
	// §9 open question); they parse but Apply returns Unsupported.
	RequestMultiA RequestType = 7
	RequestMultiB RequestType = 8
	RequestMultiC RequestType = 9
)

func (t RequestType) isReservedSingle() bool {
	return t == 4 || t == 5 || t == 6
}

func (t RequestType) isMultiCode() bool {
	return t >= 7 && t <= 9
}

// MaxIncrements is the largest two-digit minute multiplier (spec §4.4),
// corresponding to 495 minutes.
const MaxIncrements = 99

// BucketSeconds is the width of a voice-code time bucket (spec §6).
const BucketSeconds = 30

// DriftBuckets is the number of buckets on either side of the current
// bucket that validation tolerates (spec §6).
const DriftBuckets = 1

// Request is a parsed 6-digit request code (spec §3).
type Request struct {
	Type       RequestType
	ActivityID int // 0-9, activity id modulo 10
	Minutes    int // MM * 5
	Nonce      int // 0-99, anti-replay nonce embedded in the code
	raw        string
}

// Code returns the original 6-digit string this Request was parsed
// from, or the canonical rendering if constructed via NewRequest.
func (r Request) Code() string { return r.raw }

func requireDigits(s string) error {
	for _, c := range s {
		if c < '0' || c > '9' {
			return errs.New(errs.Malformed, "voicecode.Parse", nil)
		}
	}
	return nil
}
