package kvac

import (
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
	"github.com/gtank/merlin"
)

// Each proof type runs over its own merlin transcript, seeded with a
// constant label unique to that proof type. Prover and verifier must feed
// the transcript identical append sequences for the challenges to match.

func newTranscript(label string) *merlin.Transcript {
	return merlin.NewTranscript(label)
}

func appendBytes(field, data []byte, t *merlin.Transcript) {
	t.AppendMessage(field, data)
}

func appendUint64(label string, i uint64, t *merlin.Transcript) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, i)
	appendBytes([]byte(label), buf, t)
}

func appendScalar(label string, s *ristretto.Scalar, t *merlin.Transcript) {
	appendBytes([]byte(label), s.Bytes(), t)
}

func appendPoint(label string, p *ristretto.Point, t *merlin.Transcript) {
	appendBytes([]byte(label), p.Bytes(), t)
}

// challengeScalar extracts 64 transcript bytes and reduces them into the
// scalar field.
func challengeScalar(label string, t *merlin.Transcript) *ristretto.Scalar {
	data := t.ExtractBytes([]byte(label), 64)
	return fromBytesModOrderWide(data)
}

func statementDomainSep(domain string, t *merlin.Transcript) {
	appendBytes([]byte("dom-sep"), []byte(domain), t)
}

func rangeproofDomainSep(n, m uint64, t *merlin.Transcript) {
	appendBytes([]byte("dom-sep"), []byte("rangeproof v1"), t)
	appendUint64("n", n, t)
	appendUint64("m", m, t)
}

func innerproductDomainSep(n uint64, t *merlin.Transcript) {
	appendBytes([]byte("dom-sep"), []byte("ipp v1"), t)
	appendUint64("n", n, t)
}
