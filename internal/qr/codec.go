package qr

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eventra/entrypass/internal/domain"
)

// payloadPrefix versions the QR payload format so scanners can reject
// codes minted by anything else.
const payloadPrefix = "EP1."

// tokenBytes is the raw entropy per token: 256 bits, well above the
// 128-bit unguessability floor.
const tokenBytes = 32

// Codec mints ticket tokens and translates them to and from the string
// embedded in QR images. It holds no state.
type Codec struct{}

// NewCodec returns a ready codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Mint produces a cryptographically random, URL-safe token.
func (c *Codec) Mint() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Decoded is what a scanner recovers from a payload. EventHint and
// ParticipantHint exist so a UI can label the code before any lookup;
// they carry no authority. The server decides from its own records only.
type Decoded struct {
	Token           string
	EventHint       string
	ParticipantHint string
}

type envelope struct {
	Token         string `json:"t"`
	EventID       string `json:"e,omitempty"`
	ParticipantID string `json:"p,omitempty"`
}

// EncodeForDisplay builds the QR payload string for an issued ticket.
func (c *Codec) EncodeForDisplay(token, eventID, participantID string) string {
	raw, _ := json.Marshal(envelope{
		Token:         token,
		EventID:       eventID,
		ParticipantID: participantID,
	})
	return payloadPrefix + base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses a scanned payload back into its token and hints.
func (c *Codec) Decode(payload string) (Decoded, error) {
	body, ok := strings.CutPrefix(payload, payloadPrefix)
	if !ok || body == "" {
		return Decoded{}, fmt.Errorf("%w: missing %q prefix", domain.ErrMalformedPayload, payloadPrefix)
	}
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if env.Token == "" {
		return Decoded{}, fmt.Errorf("%w: empty token", domain.ErrMalformedPayload)
	}
	return Decoded{
		Token:           env.Token,
		EventHint:       env.EventID,
		ParticipantHint: env.ParticipantID,
	}, nil
}
