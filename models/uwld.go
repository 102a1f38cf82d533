package models

// Shapes parsed from the UWL ocean-freight quick-view page. Field names
// mirror the page's sections; every section defaults to empty when its table
// is absent or reads "No records found".

// UWLDMetaData is the shipment header block.
type UWLDMetaData struct {
	Bill        string `json:"bill"`
	Origin      string `json:"origin"`
	ETD         string `json:"etd"`
	Destination string `json:"destination"`
	ETA         string `json:"eta"`
	ShippersRef string `json:"shippersRef"`
	OrderRef    string `json:"orderRef"`
	ReleaseType string `json:"releaseType"`
	OnBoard     string `json:"onBoard"`
}

// UWLDLeg is one row of the transport grid.
type UWLDLeg struct {
	LegNumber         string `json:"legNumber"`
	Mode              string `json:"mode"`
	Type              string `json:"type"`
	Vessel            string `json:"vessel"`
	Voyage            string `json:"voyage"`
	LoadLocation      string `json:"loadLocation"`
	DischargeLocation string `json:"dischargeLocation"`
	DepartureDate     string `json:"departureDate"`
	ArrivalDate       string `json:"arrivalDate"`
	Status            string `json:"status"`
	Carrier           string `json:"carrier"`
}

// UWLDContainer is a container row, enriched with its pack-line row when one
// matches the container number.
type UWLDContainer struct {
	ContainerNumber string `json:"containerNumber"`
	Seal            string `json:"seal"`
	ContainerType   string `json:"containerType"`
	ContainerMode   string `json:"containerMode"`
	Pieces          string `json:"pieces,omitempty"`
	PackType        string `json:"packType,omitempty"`
}

// UWLDEvent is one tracking-event row.
type UWLDEvent struct {
	EventCode    string `json:"eventCode"`
	EventTime    string `json:"eventTime"`
	Description  string `json:"description"`
	EventDetails string `json:"eventDetails"`
}

// UWLDOrder is one purchase-order row.
type UWLDOrder struct {
	OrderNumber   string `json:"orderNumber"`
	TransportMode string `json:"transportMode"`
	Status        string `json:"status"`
	OrderDate     string `json:"orderDate"`
}

// UWLDReference is one reference-data row.
type UWLDReference struct {
	Country         string `json:"country"`
	NumberType      string `json:"numberType"`
	Number          string `json:"number"`
	TypeDescription string `json:"typeDescription"`
}

// UWLDCustomsEntry is one customs-entry row.
type UWLDCustomsEntry struct {
	ReferenceNumber string `json:"referenceNumber"`
	EntryNumber     string `json:"entryNumber"`
	MessageStatus   string `json:"messageStatus"`
	EntryAdvice     string `json:"entryAdvice"`
}

// UWLDShipment is the full parsed page. RawHTML is always null on the wire;
// the raw markup never leaves the task.
type UWLDShipment struct {
	RawHTML        any                `json:"rawHTML"`
	MetaData       UWLDMetaData       `json:"metaData"`
	Route          []UWLDLeg          `json:"route"`
	ContainersInfo []UWLDContainer    `json:"containersInfo"`
	Events         []UWLDEvent        `json:"events"`
	Orders         []UWLDOrder        `json:"orders"`
	ReferenceData  []UWLDReference    `json:"referenceData"`
	CustomsEntries []UWLDCustomsEntry `json:"customsEntries"`
}

// NewUWLDShipment returns a shipment with every section initialised empty so
// absent tables serialize as [] rather than null.
func NewUWLDShipment() *UWLDShipment {
	return &UWLDShipment{
		Route:          []UWLDLeg{},
		ContainersInfo: []UWLDContainer{},
		Events:         []UWLDEvent{},
		Orders:         []UWLDOrder{},
		ReferenceData:  []UWLDReference{},
		CustomsEntries: []UWLDCustomsEntry{},
	}
}
