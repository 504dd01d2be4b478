package models

type EnvelopeKind string

const (
	EnvelopeText  EnvelopeKind = "text"
	EnvelopeChart EnvelopeKind = "image"
	EnvelopeError EnvelopeKind = "error"
)

// Envelope is the typed answer handed back to callers of the ask pipeline.
// Chart payloads are always relative resource paths under /charts/.
type Envelope struct {
	Kind    EnvelopeKind `json:"type"`
	Payload string       `json:"data"`
}
