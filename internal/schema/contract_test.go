// internal/schema/contract_test.go
package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	stderrors "github.com/anyanwuihueze/japa-genie-active/internal/common/errors"
)

func TestChatAssistantValidateInput(t *testing.T) {
	contract := ChatAssistant()

	tests := []struct {
		name    string
		input   map[string]interface{}
		wantErr bool
	}{
		{
			name:    "valid question",
			input:   map[string]interface{}{"question": "Do I need a visa for Canada?", "wishCount": 1},
			wantErr: false,
		},
		{
			name:    "question without wish count",
			input:   map[string]interface{}{"question": "What documents do I need?"},
			wantErr: false,
		},
		{
			name:    "missing question",
			input:   map[string]interface{}{"wishCount": 2},
			wantErr: true,
		},
		{
			name:    "empty question",
			input:   map[string]interface{}{"question": ""},
			wantErr: true,
		},
		{
			name:    "negative wish count",
			input:   map[string]interface{}{"question": "hi", "wishCount": -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := contract.ValidateInput(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, stderrors.ErrCodeInputValidationFailed, stderrors.CodeOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInsightsGeneratorValidateOutput(t *testing.T) {
	contract := InsightsGenerator()

	valid := `{
		"insights": [
			{"headline": "Visa type", "detail": "A study permit covers degree programs."},
			{"headline": "Funds", "detail": "Proof of funds is mandatory.", "url": "https://example.gov/funds"},
			{"headline": "Timing", "detail": "Apply at least 12 weeks ahead."}
		],
		"costEstimates": [
			{"item": "Application fee", "cost": 150, "currency": "CAD"}
		]
	}`

	assert.NoError(t, contract.ValidateOutput([]byte(valid)))

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "too few insights",
			raw:  `{"insights": [{"headline": "a", "detail": "b"}, {"headline": "c", "detail": "d"}]}`,
		},
		{
			name: "insight missing detail",
			raw:  `{"insights": [{"headline": "a"}, {"headline": "b", "detail": "x"}, {"headline": "c", "detail": "y"}]}`,
		},
		{
			name: "empty cost estimates",
			raw:  `{"insights": [{"headline":"a","detail":"x"},{"headline":"b","detail":"y"},{"headline":"c","detail":"z"}], "costEstimates": []}`,
		},
		{
			name: "cost as string",
			raw:  `{"insights": [{"headline":"a","detail":"x"},{"headline":"b","detail":"y"},{"headline":"c","detail":"z"}], "costEstimates": [{"item":"fee","cost":"150","currency":"CAD"}]}`,
		},
		{
			name: "missing insights entirely",
			raw:  `{"costEstimates": [{"item":"fee","cost":150,"currency":"CAD"}]}`,
		},
		{
			name: "not json",
			raw:  `the fee is about 150 CAD`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := contract.ValidateOutput([]byte(tt.raw))
			assert.Error(t, err)
			assert.Equal(t, stderrors.ErrCodeSchemaViolation, stderrors.CodeOf(err))
		})
	}
}

func TestVisaInsightsCanvasValidateOutput(t *testing.T) {
	contract := VisaInsightsCanvas()

	option := func(chance float64) map[string]interface{} {
		return map[string]interface{}{
			"visaType":       "Express Entry",
			"estimatedCost":  2300,
			"approvalChance": chance,
			"processingTime": "6 months",
		}
	}

	makeDoc := func(chance float64) map[string]interface{} {
		return map[string]interface{}{
			"visaOptions": []interface{}{option(chance), option(70), option(45)},
			"costEstimates": map[string]interface{}{
				"applicationFees": 1500,
				"legalFees":       2000,
				"otherExpenses":   800,
				"totalCost":       4300,
			},
			"insightsSummary": "Your profile fits skilled migration streams.",
		}
	}

	t.Run("valid canvas", func(t *testing.T) {
		raw := mustJSON(t, makeDoc(85))
		assert.NoError(t, contract.ValidateOutput(raw))
	})

	t.Run("approval chance above 100", func(t *testing.T) {
		raw := mustJSON(t, makeDoc(120))
		err := contract.ValidateOutput(raw)
		assert.Error(t, err)
		assert.Equal(t, stderrors.ErrCodeSchemaViolation, stderrors.CodeOf(err))
	})

	t.Run("fewer than three options", func(t *testing.T) {
		doc := makeDoc(85)
		doc["visaOptions"] = []interface{}{option(85)}
		err := contract.ValidateOutput(mustJSON(t, doc))
		assert.Error(t, err)
	})

	t.Run("missing cost breakdown field", func(t *testing.T) {
		doc := makeDoc(85)
		doc["costEstimates"] = map[string]interface{}{
			"applicationFees": 1500,
			"totalCost":       4300,
		}
		err := contract.ValidateOutput(mustJSON(t, doc))
		assert.Error(t, err)
	})
}

func TestRejectionReversalContract(t *testing.T) {
	contract := RejectionReversal()

	assert.NoError(t, contract.ValidateInput(map[string]interface{}{
		"visaType":        "Student",
		"destination":     "Canada",
		"rejectionReason": "insufficient ties to home country",
		"userBackground":  "software engineer, 5 years experience",
	}))

	err := contract.ValidateInput(map[string]interface{}{"visaType": "Student"})
	assert.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInputValidationFailed, stderrors.CodeOf(err))

	assert.NoError(t, contract.ValidateOutput([]byte(`{"strategy": "## Step 1\nGather stronger proof of ties."}`)))
	assert.Error(t, contract.ValidateOutput([]byte(`{"strategy": ""}`)))
}

func TestFreeFormContractSkipsOutputValidation(t *testing.T) {
	contract := &Contract{Name: "free_form"}
	assert.NoError(t, contract.ValidateOutput([]byte("any text at all")))
}

func TestOutputInstructions(t *testing.T) {
	t.Run("lists fields with optional markers", func(t *testing.T) {
		got := InsightsGenerator().OutputInstructions()

		assert.Contains(t, got, "Respond with a single JSON object")
		assert.Contains(t, got, `"insights" (array)`)
		assert.Contains(t, got, `"costEstimates" (array, optional)`)
		assert.Contains(t, got, `"chartData" (object, optional)`)
		// nested item fields appear indented under their parent
		assert.Contains(t, got, `  - "headline"`)
	})

	t.Run("deterministic", func(t *testing.T) {
		first := VisaInsightsCanvas().OutputInstructions()
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, VisaInsightsCanvas().OutputInstructions())
		}
	})

	t.Run("empty for free-form contract", func(t *testing.T) {
		c := &Contract{Name: "free_form"}
		assert.Empty(t, c.OutputInstructions())
	})
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	assert.NoError(t, err)
	return raw
}
