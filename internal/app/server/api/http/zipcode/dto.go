package zipcode

import "vigil/internal/domain/geo"

type infoInput struct {
	Zipcode string `path:"zipcode" doc:"5-digit US zipcode" example:"55408"`
}

type infoOutput struct {
	Body *geo.ZipInfo
}
