package model

import "strings"

// Registration is a student's request for a performance slot.  Date is the
// raw session label exactly as returned by the listing endpoint.  Remarks
// and Email are optional; everything else is required.
type Registration struct {
	Date       string `json:"date" form:"date"`
	Name       string `json:"name" form:"name"`
	Instrument string `json:"instrument" form:"instrument"`
	Piece      string `json:"piece" form:"piece"`
	Duration   string `json:"duration" form:"duration"`
	Remarks    string `json:"remarks,omitempty" form:"remarks"`
	Email      string `json:"email,omitempty" form:"email"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (r Registration) Trimmed() Registration {
	return Registration{
		Date:       strings.TrimSpace(r.Date),
		Name:       strings.TrimSpace(r.Name),
		Instrument: strings.TrimSpace(r.Instrument),
		Piece:      strings.TrimSpace(r.Piece),
		Duration:   strings.TrimSpace(r.Duration),
		Remarks:    strings.TrimSpace(r.Remarks),
		Email:      strings.TrimSpace(r.Email),
	}
}

// MissingFields lists the required fields that are empty after trimming.
func (r Registration) MissingFields() []string {
	t := r.Trimmed()
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"date", t.Date},
		{"name", t.Name},
		{"instrument", t.Instrument},
		{"piece", t.Piece},
		{"duration", t.Duration},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
