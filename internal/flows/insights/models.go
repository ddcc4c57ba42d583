// internal/flows/insights/models.go
package insights

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	Insights         []Insight         `json:"insights"`
	CostEstimates    []CostEstimate    `json:"costEstimates,omitempty"`
	VisaAlternatives []VisaAlternative `json:"visaAlternatives,omitempty"`
	ChartData        *ChartData        `json:"chartData,omitempty"`
}

type Insight struct {
	Headline string `json:"headline"`
	Detail   string `json:"detail"`
	URL      string `json:"url,omitempty"`
}

type CostEstimate struct {
	Item     string  `json:"item"`
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency"`
}

type VisaAlternative struct {
	VisaName    string `json:"visaName"`
	Description string `json:"description"`
}

type ChartData struct {
	Title string       `json:"title"`
	Data  []ChartPoint `json:"data"`
}

type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
