package resources

import "fmt"

// Problem is a struct representing a problem document from the server.
//
// See https://tools.ietf.org/html/rfc7807
type Problem struct {
	Type   string `json:"type,omitempty"`
	Detail string `json:"detail,omitempty"`
	Status int    `json:"status,omitempty"`
}

// Error implements the error interface so problem documents decoded from
// ACME error responses can be returned (and wrapped) directly.
func (p *Problem) Error() string {
	return fmt.Sprintf("acme problem %q: %s", p.Type, p.Detail)
}
