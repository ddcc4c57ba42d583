// internal/schema/contracts.go
package schema

// Flow names, used for config lookup, metrics labels and error details.
const (
	FlowChatAssistant      = "visa_chat_assistant"
	FlowInsightsGenerator  = "insights_generator"
	FlowVisaInsightsCanvas = "visa_insights_canvas"
	FlowRejectionReversal  = "rejection_reversal"
	FlowSiteAssistant      = "site_assistant"
)

// ChatAssistant answers visa questions with free-form text.
func ChatAssistant() *Contract {
	return &Contract{
		Name: FlowChatAssistant,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "The user question about the visa application process.",
				},
				"wishCount": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"description": "How many questions the user has asked so far this session, counting this one.",
				},
			},
			"required": []string{"question"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"answer": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "The answer to the user question.",
				},
			},
			"required": []string{"answer"},
		},
	}
}

// InsightsGenerator produces the structured insights bundle shown alongside
// the chat answer.
func InsightsGenerator() *Contract {
	return &Contract{
		Name: FlowInsightsGenerator,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "The user's question about their visa or travel plans.",
				},
			},
			"required": []string{"question"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"insights": map[string]interface{}{
					"type":        "array",
					"minItems":    3,
					"maxItems":    5,
					"description": "A list of 3-5 key insights related to the user's question.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"headline": map[string]interface{}{
								"type":        "string",
								"description": "The key insight or topic header.",
							},
							"detail": map[string]interface{}{
								"type":        "string",
								"description": "A detailed explanation or data point for the insight.",
							},
							"url": map[string]interface{}{
								"type":        "string",
								"format":      "uri",
								"description": "An optional, highly relevant URL for the user to learn more.",
							},
						},
						"required": []string{"headline", "detail"},
					},
				},
				"costEstimates": map[string]interface{}{
					"type":        "array",
					"minItems":    1,
					"description": "A breakdown of key costs associated with the query.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"item": map[string]interface{}{
								"type":        "string",
								"description": "What the cost is for (e.g., application fee, insurance, rent).",
							},
							"cost": map[string]interface{}{
								"type":        "number",
								"minimum":     0,
								"description": "The estimated amount.",
							},
							"currency": map[string]interface{}{
								"type":        "string",
								"description": "ISO currency code for the amount.",
							},
						},
						"required": []string{"item", "cost", "currency"},
					},
				},
				"visaAlternatives": map[string]interface{}{
					"type":        "array",
					"minItems":    1,
					"description": "Alternative visa paths or related options.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"visaName": map[string]interface{}{
								"type":        "string",
								"description": "Name of the alternative visa.",
							},
							"description": map[string]interface{}{
								"type":        "string",
								"description": "Why this alternative may fit the user's situation.",
							},
						},
						"required": []string{"visaName", "description"},
					},
				},
				"chartData": map[string]interface{}{
					"type":        "object",
					"description": "Data for a simple bar chart comparing 3-5 relevant items.",
					"properties": map[string]interface{}{
						"title": map[string]interface{}{
							"type":        "string",
							"description": "Chart title (e.g., 'Cost of Living Comparison').",
						},
						"data": map[string]interface{}{
							"type":     "array",
							"minItems": 1,
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"name": map[string]interface{}{
										"type":        "string",
										"description": "Label for the data point.",
									},
									"value": map[string]interface{}{
										"type":        "number",
										"description": "Numeric value for the data point.",
									},
								},
								"required": []string{"name", "value"},
							},
						},
					},
					"required": []string{"title", "data"},
				},
			},
			"required": []string{"insights"},
		},
	}
}

// VisaInsightsCanvas produces personalized visa options from a profile,
// destination and budget.
func VisaInsightsCanvas() *Contract {
	return &Contract{
		Name: FlowVisaInsightsCanvas,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"profile": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "User profile information including background, education, and work experience.",
				},
				"destination": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "Intended destination country for the visa application.",
				},
				"budget": map[string]interface{}{
					"type":        "number",
					"minimum":     0,
					"description": "The budget the user has available for the visa application process in USD.",
				},
			},
			"required": []string{"profile", "destination", "budget"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"visaOptions": map[string]interface{}{
					"type":        "array",
					"minItems":    3,
					"description": "Array of at least 3 potential visa options with costs, approval chances and processing times.",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"visaType": map[string]interface{}{
								"type":        "string",
								"description": "Type of visa.",
							},
							"estimatedCost": map[string]interface{}{
								"type":        "number",
								"minimum":     0,
								"description": "Estimated cost of the visa in USD.",
							},
							"approvalChance": map[string]interface{}{
								"type":        "number",
								"minimum":     0,
								"maximum":     100,
								"description": "Estimated approval chance (0-100).",
							},
							"processingTime": map[string]interface{}{
								"type":        "string",
								"description": "Estimated processing time (e.g., months).",
							},
						},
						"required": []string{"visaType", "estimatedCost", "approvalChance", "processingTime"},
					},
				},
				"costEstimates": map[string]interface{}{
					"type":        "object",
					"description": "Detailed cost estimates for the visa application process.",
					"properties": map[string]interface{}{
						"applicationFees": map[string]interface{}{
							"type":        "number",
							"minimum":     0,
							"description": "Estimated application fees in USD.",
						},
						"legalFees": map[string]interface{}{
							"type":        "number",
							"minimum":     0,
							"description": "Estimated legal fees in USD.",
						},
						"otherExpenses": map[string]interface{}{
							"type":        "number",
							"minimum":     0,
							"description": "Other potential expenses (e.g., travel, accommodation) in USD.",
						},
						"totalCost": map[string]interface{}{
							"type":        "number",
							"minimum":     0,
							"description": "Total estimated cost in USD.",
						},
					},
					"required": []string{"applicationFees", "legalFees", "otherExpenses", "totalCost"},
				},
				"insightsSummary": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "A summary of the user profile with suggestions on visa paths forward.",
				},
			},
			"required": []string{"visaOptions", "costEstimates", "insightsSummary"},
		},
	}
}

// RejectionReversal produces a comeback strategy after a visa rejection.
func RejectionReversal() *Contract {
	return &Contract{
		Name: FlowRejectionReversal,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"visaType": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "The type of visa the user was rejected for (e.g., Student, Work, Tourist).",
				},
				"destination": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "The country the user was applying to.",
				},
				"rejectionReason": map[string]interface{}{
					"type":        "string",
					"description": "The official reason provided for the visa rejection, if any.",
				},
				"userBackground": map[string]interface{}{
					"type":        "string",
					"description": "A brief summary of the user's background and purpose of travel.",
				},
			},
			"required": []string{"visaType", "destination"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"strategy": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "A detailed, step-by-step strategy to address the rejection reasons and improve reapplication chances, formatted as markdown.",
				},
			},
			"required": []string{"strategy"},
		},
	}
}

// SiteAssistant answers questions about the product itself.
func SiteAssistant() *Contract {
	return &Contract{
		Name: FlowSiteAssistant,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "The user question about the Japa Genie service, its features, or pricing.",
				},
			},
			"required": []string{"question"},
		},
		OutputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"answer": map[string]interface{}{
					"type":        "string",
					"minLength":   1,
					"description": "The answer to the user question.",
				},
			},
			"required": []string{"answer"},
		},
	}
}
