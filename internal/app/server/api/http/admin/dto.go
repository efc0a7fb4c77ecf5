package admin

// signedQuery documents the parameters checked by the admin middleware.
type signedQuery struct {
	Timestamp string `query:"timestamp" doc:"Milliseconds since epoch" example:"1736960400000"`
	Signature string `query:"signature" doc:"Hex r||s signature of the timestamp"`
}

type pageInput struct {
	signedQuery
}

type pageOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type deleteInput struct {
	signedQuery
	UUID string `path:"uuid"`
}

type deleteResponse struct {
	Success         bool     `json:"success"`
	UUID            string   `json:"uuid"`
	SyncedTo        []string `json:"syncedTo"`
	RemainingVigils int      `json:"remainingVigils"`
}

type deleteOutput struct {
	Body deleteResponse
}
