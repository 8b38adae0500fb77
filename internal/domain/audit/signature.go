package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"
)

type signaturePayload struct {
	EntryID        string `json:"entryId"`
	RequestID      string `json:"requestId"`
	Action         string `json:"action"`
	PerformedBy    string `json:"performedBy"`
	PerformedAt    string `json:"performedAt"`
	Level          int    `json:"level,omitempty"`
	Comments       string `json:"comments,omitempty"`
	PreviousStatus string `json:"previousStatus,omitempty"`
	NewStatus      string `json:"newStatus,omitempty"`
	Metadata       string `json:"metadata,omitempty"`
}

func buildSignaturePayload(e *Entry) signaturePayload {
	payload := signaturePayload{
		EntryID:     e.EntryID.String(),
		RequestID:   e.RequestID.String(),
		Action:      string(e.Action),
		PerformedBy: e.PerformedBy,
		PerformedAt: e.PerformedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.Level != nil {
		payload.Level = *e.Level
	}
	if e.Comments != nil {
		payload.Comments = *e.Comments
	}
	if e.PreviousStatus != nil {
		payload.PreviousStatus = *e.PreviousStatus
	}
	if e.NewStatus != nil {
		payload.NewStatus = *e.NewStatus
	}
	if len(e.Metadata) > 0 {
		payload.Metadata = base64.StdEncoding.EncodeToString(e.Metadata)
	}
	return payload
}

// SignEntry generates an HMAC signature for a history entry.
func SignEntry(e *Entry, key []byte) ([]byte, error) {
	data, err := json.Marshal(buildSignaturePayload(e))
	if err != nil {
		return nil, err
	}
	mac := hmac.New(sha256.New, key)
	_, _ = mac.Write(data)
	return mac.Sum(nil), nil
}

// VerifyEntrySignature verifies a history entry's HMAC signature.
func VerifyEntrySignature(e *Entry, key []byte) (bool, error) {
	if len(e.Signature) == 0 {
		return false, nil
	}
	expected, err := SignEntry(e, key)
	if err != nil {
		return false, err
	}
	return hmac.Equal(expected, e.Signature), nil
}
