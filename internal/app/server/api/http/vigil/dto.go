package vigil

import (
	"vigil/internal/domain/vigil"
)

// fieldsDTO mirrors vigil.Fields. Nothing is required at the schema level so
// that missing fields surface as 400 from domain validation.
type fieldsDTO struct {
	Zipcode     string `json:"zipcode,omitempty" required:"false" doc:"5-digit US zipcode" example:"55408"`
	Location    string `json:"location,omitempty" required:"false" doc:"Where the vigil takes place" example:"George Floyd Square"`
	Date        string `json:"date,omitempty" required:"false" doc:"Calendar date, YYYY-MM-DD" example:"2025-01-15"`
	Time        string `json:"time,omitempty" required:"false" doc:"Local clock time, HH:MM" example:"18:00"`
	Description string `json:"description,omitempty" required:"false"`
	Contact     string `json:"contact,omitempty" required:"false"`
	Organizer   string `json:"organizer,omitempty" required:"false" doc:"Defaults to Anonymous"`
}

func (f fieldsDTO) toDomain() vigil.Fields {
	return vigil.Fields{
		Zipcode:     f.Zipcode,
		Location:    f.Location,
		Date:        f.Date,
		Time:        f.Time,
		Description: f.Description,
		Contact:     f.Contact,
		Organizer:   f.Organizer,
	}
}

type createInput struct {
	Body struct {
		Data fieldsDTO `json:"data"`
	}
}

type createResponse struct {
	UUID        string      `json:"uuid"`
	Vigil       vigil.Vigil `json:"vigil"`
	SyncedTo    []string    `json:"syncedTo"`
	TotalVigils int         `json:"totalVigils"`
}

type createOutput struct {
	Body createResponse
}

type findInput struct {
	UUID string `path:"uuid"`
}

type findResponse struct {
	UUID string      `json:"uuid"`
	Data vigil.Vigil `json:"data"`
}

type findOutput struct {
	Body findResponse
}

type searchInput struct {
	Zipcode string `path:"zipcode" doc:"5-digit US zipcode" example:"55406"`
}

type searchResponse struct {
	Zipcode      string         `json:"zipcode"`
	SearchRadius float64        `json:"searchRadius"`
	Vigils       []vigil.Ranked `json:"vigils"`
	Count        int            `json:"count"`
}

type searchOutput struct {
	Body searchResponse
}

type listResponse struct {
	Vigils      map[string]vigil.Vigil `json:"vigils"`
	LastUpdated int64                  `json:"lastUpdated"`
	TotalVigils int                    `json:"totalVigils"`
	Identity    *string                `json:"identity"`
}

type listOutput struct {
	Body listResponse
}

type countResponse struct {
	Total int `json:"total"`
	Today int `json:"today"`
}

type countOutput struct {
	Body countResponse
}
