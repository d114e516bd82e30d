package architecture

import "context"

// Request describes the system the caller wants an architecture for.
type Request struct {
	AppName           string `json:"app_name"`
	SystemDescription string `json:"system_description"`
}

// Component is one node of a generated architecture.
//
// DependencyPackages keeps the upstream's wire name so existing callers and the
// generation service need no change.
type Component struct {
	Type               string   `json:"type"`
	Name               string   `json:"name"`
	Purpose            string   `json:"purpose"`
	Uses               []string `json:"uses"`
	DependencyPackages []string `json:"pypi_packages"`
	IsEndpoint         bool     `json:"is_endpoint"`
}

// Response is the generated architecture relayed back to the caller.
type Response struct {
	Architecture           []Component `json:"architecture"`
	ExternalInfrastructure []string    `json:"external_infrastructure"`
}

// Generator produces an architecture for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
