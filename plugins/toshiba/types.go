package toshiba

// Login status codes returned in the StatusCode field.
const (
	statusSuccess         = "Success"
	statusInvalidUserPass = "InvalidUserNameorPassword"
)

type loginEnvelope struct {
	StatusCode string `json:"StatusCode"`
	IsSuccess  bool   `json:"IsSuccess"`
	Message    string `json:"Message"`
}

// LoginSuccess is the ResObj of a successful login.
type LoginSuccess struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	ConsumerID       string `json:"consumerId"`
	CountryID        int    `json:"countryId"`
	ConsumerMasterID string `json:"consumerMasterId"`
}

type loginError struct {
	Error string `json:"error"`
}

type mappingResponse struct {
	ResObj    []GroupMap `json:"ResObj"`
	IsSuccess bool       `json:"IsSuccess"`
	Message   string     `json:"Message"`
}

// GroupMap is one AC group of the consumer account.
type GroupMap struct {
	GroupID    string      `json:"GroupId"`
	GroupName  string      `json:"GroupName"`
	ConsumerID string      `json:"ConsumerId"`
	TimeZone   string      `json:"TimeZone"`
	ACList     []ACMapping `json:"ACList"`
}

// ACMapping describes one registered air conditioner.
type ACMapping struct {
	ID                    string `json:"Id"`
	DeviceUniqueID        string `json:"DeviceUniqueId"`
	Name                  string `json:"Name"`
	ACModelID             string `json:"ACModelId"`
	Description           string `json:"Description"`
	CreatedDate           string `json:"CreatedDate"`
	ACStateData           string `json:"ACStateData"`
	FirmwareUpgradeStatus string `json:"FirmwareUpgradeStatus"`
	URL                   string `json:"URL"`
	File                  string `json:"File"`
	MeritFeature          string `json:"MeritFeature"`
	AdapterType           string `json:"AdapterType"`
	FirmwareVersion       string `json:"FirmwareVersion"`
	FirmwareCode          string `json:"FirmwareCode"`
}

// UnitState pairs a mapping entry with its decoded state.
type UnitState struct {
	Unit  ACMapping
	State StateData
}
