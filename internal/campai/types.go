package campai

// Organisation is the subset of the organisation resource the sync needs.
type Organisation struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Contact mirrors the membership service's contact resource, limited to
// the explicitly enumerated fields the sync reads. Extra remote fields are
// ignored so the diff stays total and well defined.
type Contact struct {
	ID            string        `json:"_id"`
	Personal      Personal      `json:"personal"`
	Communication Communication `json:"communication"`
	Membership    Membership    `json:"membership"`
}

// Personal holds name and record-kind flags.
type Personal struct {
	FirstName      string `json:"personFirstName"`
	LastName       string `json:"personLastName"`
	IsPerson       bool   `json:"isPerson"`
	IsOrganisation bool   `json:"isOrganisation"`
}

// Communication holds contact details.
type Communication struct {
	Email string `json:"email"`
}

// Membership holds status and the sortable membership number. The number
// is optional on the remote side.
type Membership struct {
	Status     string `json:"status"`
	NumberSort *int   `json:"numberSort"`
}
