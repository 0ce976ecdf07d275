// Package qrimage renders a signed QR grant token or a pairing session's
// QR payload as a scannable PNG image. Token generation and
// verification live entirely in qrgrant and pairing; this package only
// turns the resulting opaque string into pixels.
package qrimage

import (
	"bytes"
	"image/png"

	"github.com/skip2/go-qrcode"

	"github.com/allow2/offlinecore/errs"
)

// Size is the default rendered image width and height, in pixels.
const Size = 256

// Renderer turns a payload string into a PNG-encoded QR code image.
type Renderer interface {
	Render(payload string) ([]byte, error)
}

type renderer struct {
	size          int
	recoveryLevel qrcode.RecoveryLevel
}

// New returns a Renderer using go-qrcode's medium error-correction level
// and Size-pixel output. The grant token or pairing QR payload is
// printed or displayed once and scanned immediately, so the higher
// redundancy of qrcode.High is not needed.
func New() Renderer {
	return &renderer{size: Size, recoveryLevel: qrcode.Medium}
}

func (r *renderer) Render(payload string) ([]byte, error) {
	const op = "qrimage.Render"

	code, err := qrcode.New(payload, r.recoveryLevel)
	if err != nil {
		return nil, errs.New(errs.Malformed, op, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code.Image(r.size)); err != nil {
		return nil, errs.New(errs.Malformed, op, err)
	}
	return buf.Bytes(), nil
}
