package health

type Input struct{}

type Output struct {
	Body Response
}

const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"
)

// Response reports liveness plus the replication state. A degraded service
// still answers reads, so the probe itself stays 200.
type Response struct {
	Status      string   `json:"status" example:"OK" enum:"OK,DEGRADED" doc:"OK when a remote identity is held"`
	Identity    *string  `json:"identity" doc:"Remote identity in use, null when degraded"`
	Endpoints   []string `json:"endpoints" doc:"Configured replica endpoints in preference order"`
	Replicating []string `json:"replicating" doc:"Endpoints that hold an identity and receive pushes"`
}
