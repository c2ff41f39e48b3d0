package rng

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math"
)

// hmacSource derives an unbounded byte stream from HMAC-SHA256 over
// (key, scenario, trial, round). It lets a caller publish a key after a run
// and have a third party replay any individual trial without the full batch.
type hmacSource struct {
	key      string
	scenario string
	trial    uint64
	round    uint64
	pos      int
	buf      [sha256.Size]byte
}

// NewVerifiable returns a Source whose stream is a pure function of
// (key, scenario, trial). Distinct trial indices yield independent streams.
func NewVerifiable(key, scenario string, trial uint64) Source {
	h := &hmacSource{key: key, scenario: scenario, trial: trial}
	h.fill()
	return h
}

func (h *hmacSource) fill() {
	mac := hmac.New(sha256.New, []byte(h.key))
	fmt.Fprintf(mac, "%s:%d:%d", h.scenario, h.trial, h.round)
	copy(h.buf[:], mac.Sum(nil))
}

func (h *hmacSource) next() byte {
	if h.pos >= sha256.Size {
		h.round++
		h.pos = 0
		h.fill()
	}
	b := h.buf[h.pos]
	h.pos++
	return b
}

// Float64 consumes exactly 4 bytes per value. Four base-256 digits give
// ~2^-32 resolution, plenty for target selection and condition rolls.
func (h *hmacSource) Float64() float64 {
	v := 0.0
	for i := 0; i < 4; i++ {
		v += float64(h.next()) / math.Pow(256, float64(i+1))
	}
	return v
}

func (h *hmacSource) IntN(n int) int {
	return int(h.Float64() * float64(n))
}
