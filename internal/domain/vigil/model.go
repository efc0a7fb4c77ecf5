package vigil

// AnonymousOrganizer is used when a vigil is posted without an organizer name.
const AnonymousOrganizer = "Anonymous"

// Vigil is one posted event. It is never updated in place.
type Vigil struct {
	UUID        string `json:"uuid"`
	Zipcode     string `json:"zipcode"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Description string `json:"description,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Organizer   string `json:"organizer"`
	CreatedAt   int64  `json:"createdAt"`
}

// Fields are the user supplied parts of a vigil.
type Fields struct {
	Zipcode     string `json:"zipcode" validate:"len=5,number"`
	Location    string `json:"location" validate:"notblank,max=200"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	Contact     string `json:"contact,omitempty" validate:"max=200"`
	Organizer   string `json:"organizer,omitempty" validate:"max=100"`
}

// Snapshot is the whole store plus metadata; the unit of replication.
type Snapshot struct {
	Vigils      map[string]Vigil `json:"vigils"`
	LastUpdated int64            `json:"lastUpdated"`
	TotalVigils int              `json:"totalVigils"`
}

// Ranked is a search hit with its display distance in miles.
type Ranked struct {
	Vigil
	Distance float64 `json:"distance"`
}
