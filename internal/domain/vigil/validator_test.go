package vigil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidZipcode(t *testing.T) {
	tests := []struct {
		zip  string
		want bool
	}{
		{"55408", true},
		{"00501", true},
		{"5540", false},
		{"554081", false},
		{"5540a", false},
		{" 55408", false},
		{"", false},
		{"55408-1234", false},
	}

	for _, tt := range tests {
		t.Run(tt.zip, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidZipcode(tt.zip))
		})
	}
}

func TestFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *Fields)
		wantErr string
	}{
		{name: "valid", mutate: func(f *Fields) {}},
		{name: "optional fields empty", mutate: func(f *Fields) {
			f.Description, f.Contact, f.Organizer = "", "", ""
		}},
		{name: "bad zipcode", mutate: func(f *Fields) { f.Zipcode = "1234" }, wantErr: "zipcode"},
		{name: "blank location", mutate: func(f *Fields) { f.Location = "   " }, wantErr: "location"},
		{name: "bad date", mutate: func(f *Fields) { f.Date = "15/01/2025" }, wantErr: "date"},
		{name: "impossible date", mutate: func(f *Fields) { f.Date = "2025-02-30" }, wantErr: "date"},
		{name: "bad time", mutate: func(f *Fields) { f.Time = "6pm" }, wantErr: "time"},
		{name: "missing zipcode", mutate: func(f *Fields) { f.Zipcode = "" }, wantErr: "zipcode must be 5 digits"},
		{name: "missing time", mutate: func(f *Fields) { f.Time = "" }, wantErr: "time is required"},
		{name: "description too long", mutate: func(f *Fields) {
			f.Description = strings.Repeat("x", MaxDescriptionLen+1)
		}, wantErr: "description must be at most 2000"},
		{name: "location at limit", mutate: func(f *Fields) {
			f.Location = strings.Repeat("é", MaxLocationLen)
		}},
		{name: "location too long", mutate: func(f *Fields) {
			f.Location = strings.Repeat("x", MaxLocationLen+1)
		}, wantErr: "location must be at most"},
		{name: "contact too long", mutate: func(f *Fields) {
			f.Contact = strings.Repeat("x", MaxContactLen+1)
		}, wantErr: "contact"},
		{name: "organizer too long", mutate: func(f *Fields) {
			f.Organizer = strings.Repeat("x", MaxOrganizerLen+1)
		}, wantErr: "organizer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := sampleFields()
			tt.mutate(&f)

			err := f.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidData)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
