// internal/flows/canvas/models.go
package canvas

type Input struct {
	Profile     string  `json:"profile"`
	Destination string  `json:"destination"`
	Budget      float64 `json:"budget"`
}

type Output struct {
	VisaOptions     []VisaOption  `json:"visaOptions"`
	CostEstimates   CostBreakdown `json:"costEstimates"`
	InsightsSummary string        `json:"insightsSummary"`
}

type VisaOption struct {
	VisaType       string  `json:"visaType"`
	EstimatedCost  float64 `json:"estimatedCost"`
	ApprovalChance float64 `json:"approvalChance"`
	ProcessingTime string  `json:"processingTime"`
}

type CostBreakdown struct {
	ApplicationFees float64 `json:"applicationFees"`
	LegalFees       float64 `json:"legalFees"`
	OtherExpenses   float64 `json:"otherExpenses"`
	TotalCost       float64 `json:"totalCost"`
}
