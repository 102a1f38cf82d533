package models

// Envelope status values. Every completed lookup resolves to exactly one of
// these; a "no data published by carrier" outcome is success, not error.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Markers a carrier workflow reports when the site affirmatively has no
// record for the tracking number. Kept byte-identical to what downstream
// consumers already match on.
const (
	MsgNoDataOnSite         = "SEALINE_HASNT_PROVIDE_INFO"
	MsgTelemetryUnreachable = "MAERSK_TELEMETRY_ERROR"
)

// ResultEnvelope is the single wire shape for a completed lookup.
// Status "success" implies RawData is present (possibly a NoDataMarker);
// "error" implies Message is set and RawData carries whatever partial data
// had been captured before the failure.
type ResultEnvelope struct {
	Status         string `json:"status"`
	TrackingNumber string `json:"trackingNumber"`
	CarrierCode    string `json:"code"`
	ShipmentType   string `json:"type"`
	Message        string `json:"message,omitempty"`
	RawData        any    `json:"rawData,omitempty"`
}

// SuccessEnvelope wraps raw carrier data for a completed task.
func SuccessEnvelope(task LookupTask, raw any) *ResultEnvelope {
	return &ResultEnvelope{
		Status:         StatusSuccess,
		TrackingNumber: task.TrackingNumber,
		CarrierCode:    task.CarrierCode,
		ShipmentType:   task.ShipmentType,
		RawData:        raw,
	}
}

// ErrorEnvelope wraps a failure, preserving any partial raw data.
func ErrorEnvelope(task LookupTask, msg string, raw any) *ResultEnvelope {
	return &ResultEnvelope{
		Status:         StatusError,
		TrackingNumber: task.TrackingNumber,
		CarrierCode:    task.CarrierCode,
		ShipmentType:   task.ShipmentType,
		Message:        msg,
		RawData:        raw,
	}
}

// NoDataMarker is the explicit "carrier has not published data" outcome,
// distinct from a transport or parse error.
type NoDataMarker struct {
	Message             string `json:"message"`
	IsNoDataFoundOnSite bool   `json:"isNoDataFoundOnSite"`
}

// NoDataPublished marks a lookup the carrier's site affirmatively has no
// record for (login wall, 404 from its API, empty result grid).
func NoDataPublished() NoDataMarker {
	return NoDataMarker{Message: MsgNoDataOnSite, IsNoDataFoundOnSite: true}
}

// TelemetryUnreachable marks a lookup where the anti-bot telemetry hook never
// became available within the retry budget.
func TelemetryUnreachable() NoDataMarker {
	return NoDataMarker{Message: MsgTelemetryUnreachable, IsNoDataFoundOnSite: true}
}

// BatchRequest is a list of tasks submitted together. Tasks run with full
// fan-out concurrency; no task's failure cancels the others.
type BatchRequest struct {
	Tasks []LookupTask `json:"tasks" binding:"required"`
}

// BatchSummary is the aggregate outcome reported after every task in a batch
// has been individually delivered.
type BatchSummary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// BatchResponse is the HTTP batch reply: every envelope plus the summary.
type BatchResponse struct {
	Results []*ResultEnvelope `json:"results"`
	Summary BatchSummary      `json:"summary"`
}
