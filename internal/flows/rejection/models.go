// internal/flows/rejection/models.go
package rejection

type Input struct {
	VisaType        string `json:"visaType"`
	Destination     string `json:"destination"`
	RejectionReason string `json:"rejectionReason"`
	UserBackground  string `json:"userBackground"`
}

type Output struct {
	Strategy string `json:"strategy"`
}
