package mesa

// Fields holds the reservation attributes collected over a conversation.
// The zero value means nothing is known yet: empty strings and a nil
// PartySize are "unknown". Values are populated incrementally and never
// cleared once set except by explicit update.
type Fields struct {
	Name            string
	Phone           string
	Email           string
	PartySize       *int
	Date            string // YYYY-MM-DD
	Time            string // HH:MM, 24-hour
	SpecialRequests string
}

// FieldsPatch carries a subset of reservation attributes where nil means
// "not mentioned". It is the normalized mapping echoed by the
// remember_fields tool: absent fields are explicit nulls, not omitted keys.
type FieldsPatch struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Email           *string `json:"email"`
	PartySize       *int    `json:"party_size"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	SpecialRequests *string `json:"special_requests"`
}

// Merge applies p onto f using last-non-null-wins per field. A nil or
// empty patch value never clears a known value.
func (f *Fields) Merge(p FieldsPatch) {
	if p.Name != nil && *p.Name != "" {
		f.Name = *p.Name
	}
	if p.Phone != nil && *p.Phone != "" {
		f.Phone = *p.Phone
	}
	if p.Email != nil && *p.Email != "" {
		f.Email = *p.Email
	}
	if p.PartySize != nil && *p.PartySize > 0 {
		n := *p.PartySize
		f.PartySize = &n
	}
	if p.Date != nil && *p.Date != "" {
		f.Date = *p.Date
	}
	if p.Time != nil && *p.Time != "" {
		f.Time = *p.Time
	}
	if p.SpecialRequests != nil && *p.SpecialRequests != "" {
		f.SpecialRequests = *p.SpecialRequests
	}
}

// Complete reports whether every field required to create a reservation
// is known. Special requests are optional.
func (f Fields) Complete() bool {
	return f.Name != "" &&
		f.Phone != "" &&
		f.Email != "" &&
		f.PartySize != nil &&
		f.Date != "" &&
		f.Time != ""
}
