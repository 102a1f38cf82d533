package models

import (
	"fmt"
	"strings"
	"time"
)

// LookupTask identifies one external tracking lookup. It is immutable once
// created; a task is dispatched to exactly one carrier workflow.
type LookupTask struct {
	TrackingNumber string `json:"tracking_number" binding:"required"`
	CarrierCode    string `json:"code"`
	ShipmentType   string `json:"type"`
}

// Validate checks the parts of the task the gateway refuses to dispatch
// without. An invalid task never touches the session pool.
func (t LookupTask) Validate() error {
	if strings.TrimSpace(t.TrackingNumber) == "" {
		return NewTrackError(ErrCodeInvalidInput, "Empty or invalid tracking number provided", nil)
	}
	return nil
}

// TaskID derives the identifier that correlates a task to its browser
// session. Uniqueness is only needed for the lifetime of one lookup.
func (t LookupTask) TaskID() string {
	return fmt.Sprintf("%s-%s-%d", t.CarrierCode, t.TrackingNumber, time.Now().UnixMilli())
}
