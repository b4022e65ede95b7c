// Package ai provides the structured-field extraction collaborator. The
// capability is network-bound and nondeterministic, so it hides behind the
// StructuredExtractor interface and the validator is tested against a stub.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fraudlens/tax-forensics-api/internal/models"
	"github.com/fraudlens/tax-forensics-api/internal/utils"
)

// StructuredExtractor turns document text into named tax fields.
type StructuredExtractor interface {
	Extract(ctx context.Context, text string, kind models.DocType) (*models.StructuredRecord, error)
}

type geminiExtractor struct {
	apiKey string
	model  string
	logger *utils.Logger
	client *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func NewGeminiExtractor(apiKey, model string, logger *utils.Logger) StructuredExtractor {
	return &geminiExtractor{
		apiKey: apiKey,
		model:  model,
		logger: logger,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (g *geminiExtractor) Extract(ctx context.Context, text string, kind models.DocType) (*models.StructuredRecord, error) {
	// Truncate text if too long (keep first 8000 characters)
	if len(text) > 8000 {
		text = text[:8000] + "..."
	}

	prompt := buildPrompt(text, kind)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", g.model, g.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Error("Gemini API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("Gemini API returned status %d", resp.StatusCode)
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if geminiResp.Error != nil {
		return nil, fmt.Errorf("Gemini API error: %s", geminiResp.Error.Message)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no candidates in response")
	}

	content := geminiResp.Candidates[0].Content.Parts[0].Text

	record, err := ParseRecord(content, kind)
	if err != nil {
		g.logger.Error("Failed to parse Gemini response", "content", content)
		return nil, err
	}

	return record, nil
}

// ParseRecord decodes the model's JSON reply into a StructuredRecord,
// tolerating a markdown code fence around the object.
func ParseRecord(content string, kind models.DocType) (*models.StructuredRecord, error) {
	var record models.StructuredRecord
	if err := json.Unmarshal([]byte(content), &record); err != nil {
		content = extractJSON(content)
		if err := json.Unmarshal([]byte(content), &record); err != nil {
			return nil, fmt.Errorf("failed to parse extraction response as JSON: %w", err)
		}
	}
	record.Kind = kind
	return &record, nil
}

func buildPrompt(text string, kind models.DocType) string {
	var docName, extraFields string
	switch kind {
	case models.DocTypeT1:
		docName = "a Canadian T1 Income Tax Return"
		extraFields = `  "filing_date": {"value": "YYYY-MM-DD", "raw": "..."} or null,`
	case models.DocTypeNOA:
		docName = "a Canada Revenue Agency Notice of Assessment"
		extraFields = `  "assessment_date": {"value": "YYYY-MM-DD", "raw": "..."} or null,
  "identification_number": {"value": "...", "raw": "..."} or null,`
	default:
		docName = "a Canadian tax document"
	}

	return fmt.Sprintf(`Extract the following fields from %s and respond ONLY with a valid JSON object (no markdown, no code blocks). Every field has the shape {"value": "<normalized value>", "raw": "<exact source text>"}; use null for fields that are absent.

{
  "sin": {"value": "123456789", "raw": "..."} or null,
  "full_name": {"value": "...", "raw": "..."} or null,
  "address": {"value": "...", "raw": "..."} or null,
  "refund_amount": {"value": "1234.56", "raw": "..."} or null,
  "total_income": {"value": "1234.56", "raw": "..."} or null,
  "net_income": {"value": "1234.56", "raw": "..."} or null,
  "taxable_income": {"value": "1234.56", "raw": "..."} or null,
%s
  "accountant_name": {"value": "...", "raw": "..."} or null,
  "accountant_id": {"value": "...", "raw": "..."} or null
}

Document text:
%s`, docName, extraFields, text)
}

// extractJSON attempts to extract JSON from markdown code blocks
func extractJSON(content string) string {
	if len(content) > 7 && content[:3] == "```" {
		start := 0
		end := len(content)

		// Find first newline after opening ```
		for i := 3; i < len(content); i++ {
			if content[i] == '\n' {
				start = i + 1
				break
			}
		}

		// Find closing ```
		for i := len(content) - 1; i >= 0; i-- {
			if i >= 2 && content[i-2:i+1] == "```" {
				end = i - 2
				break
			}
		}

		if start < end {
			content = content[start:end]
		}
	}

	return content
}
