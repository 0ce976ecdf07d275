package voicecode

import (
	"fmt"
	"strconv"
	"strings"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/internal/metrics"
)

// GenerateRequestCode builds a request code "T A MM NN" for activityID
// and minutes, per spec §4.4. minutes is rounded to the nearest multiple
// of 5 and clamped to MaxIncrements*5 (495). NN is drawn uniformly from
// provider's randomness.
func GenerateRequestCode(provider sagecrypto.Provider, reqType RequestType, activityID int, minutes int) (Request, error) {
	const op = "voicecode.GenerateRequestCode"

	mm := (minutes + 2) / 5 // round to nearest 5
	if mm > MaxIncrements {
		mm = MaxIncrements
	}
	if mm < 0 {
		mm = 0
	}

	nn, err := randomDecimalByte(provider)
	if err != nil {
		return Request{}, errs.New(errs.Malformed, op, err)
	}

	a := ((activityID % 10) + 10) % 10
	raw := fmt.Sprintf("%d%d%02d%02d", int(reqType), a, mm, nn)

	metrics.VoiceCodesRequested.Inc()

	return Request{
		Type:       reqType,
		ActivityID: a,
		Minutes:    mm * 5,
		Nonce:      nn,
		raw:        raw,
	}, nil
}

// randomDecimalByte returns a uniformly random integer in [0, 99].
func randomDecimalByte(provider sagecrypto.Provider) (int, error) {
	b, err := provider.RandomBytes(1)
	if err != nil {
		return 0, err
	}
	// Reject-and-retry would be more uniform over [0,255]; spot bias at
	// the edges is immaterial for a 6-digit anti-replay nonce, so a
	// single modulo reduction is sufficient here.
	return int(b[0]) % 100, nil
}

// ParseRequestCode parses a 6-digit request code. Input is tolerant of
// surrounding whitespace and non-digit separators (spec §6): they are
// stripped before validation. Fails with Malformed unless the remaining
// string matches ^[0-9]{6}$ and the type digit is <= 9 (all type digits
// 0-9 parse; 4-6 are reserved single-use digits with no defined
// semantics, 7-9 are reserved for multi-code sequences).
func ParseRequestCode(s string) (Request, error) {
	const op = "voicecode.ParseRequestCode"

	stripped := stripNonDigits(s)
	if len(stripped) != 6 {
		return Request{}, errs.New(errs.Malformed, op, nil)
	}
	if err := requireDigits(stripped); err != nil {
		return Request{}, err
	}

	t, _ := strconv.Atoi(stripped[0:1])
	a, _ := strconv.Atoi(stripped[1:2])
	mm, _ := strconv.Atoi(stripped[2:4])
	nn, _ := strconv.Atoi(stripped[4:6])

	return Request{
		Type:       RequestType(t),
		ActivityID: a,
		Minutes:    mm * 5,
		Nonce:      nn,
		raw:        stripped,
	}, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
