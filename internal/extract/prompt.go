// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"text/template"

	"github.com/pdiddy/biomarker-engine/internal/biomarker"
)

// systemPrompt primes the model as an aging-research domain expert.
const systemPrompt = `You are an expert in aging research and biomarker validation with deep knowledge of:
- Hallmarks of aging and associated molecular markers
- Epigenetic clocks (Horvath, Hannum, PhenoAge, GrimAge, DunedinPACE)
- Multi-omics biomarkers (genomic, epigenetic, transcriptomic, proteomic, metabolomic)
- Controlled vocabularies: Gene Ontology, KEGG pathways, UniProt, MeSH
- Statistical validation criteria for aging research

Your task is to extract biomarkers with scientific rigor.`

// extractionPromptTmpl is the prompt sent to the Claude API for each
// abstract. It spells out the required fields, the quality bar, and the
// controlled-vocabulary formats the downstream validators enforce.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`Extract aging biomarkers from the scientific text below.

EXTRACTION REQUIREMENTS:
1. Biomarker Identity:
   - Official or commonly used name
   - Category: epigenetic, proteomic, metabolomic, genomic, transcriptomic, cellular, or multi_omics
   - Measurement method and technical specifications

2. Quantitative Findings:
   - Numerical results with units
   - Statistical significance (p-value must be < 0.05)
   - Effect sizes, confidence intervals, sample sizes
   - Avoid qualitative-only findings

3. Validation Status:
   - Replication across cohorts
   - Independent validation studies
   - Number of replications
   - Validation cohort details

4. Controlled Vocabulary Mapping:
   - Gene Ontology (GO) terms for biological processes
   - KEGG pathways for molecular mechanisms
   - UniProt IDs for proteins
   - MeSH terms for medical concepts
   - HGNC gene symbols where applicable

5. Associations:
   - Link biomarkers to phenotypes or outcomes
   - Include correlation coefficients, hazard ratios, or odds ratios
   - Specify predictive relationships

6. Relationships:
   - Typed links between biomarkers and outcomes
   - Predicate: measures, predicts, correlates_with, validated_by, associated_with, influences, or derived_from

QUALITY CRITERIA:
- Prioritize validated biomarkers over exploratory findings
- Include only statistically significant results (p < 0.05)
- Prefer quantitative findings with effect sizes
- Map to standard ontologies when possible
- Include confidence scores for extracted entities

CONTROLLED VOCABULARY FORMATS:
- GO terms: GO:XXXXXXX (7 digits)
- KEGG pathways: hsa##### or mmu##### (human or mouse)
- UniProt IDs: 6-10 alphanumeric characters
- MeSH terms: D###### (6 digits)

OUTPUT FORMAT:
Respond with a JSON object containing an "entities" array and a "relationships" array, with exact text spans for provenance. Do not include any text outside the JSON object.
{{.FewShot}}
TEXT TO ANALYZE:
{{.Text}}
`))

// fewShotSection holds worked examples that anchor the output shape. The
// first shows an epigenetic clock with validation, the second a proteomic
// marker with associations.
const fewShotSection = `
FEW-SHOT EXAMPLES:

EXAMPLE 1 - EPIGENETIC CLOCK:

Input Text:
"DNA methylation age was assessed using the Horvath multi-tissue clock, which utilizes 353 CpG sites. In our cohort (n=1,200), biological age acceleration averaged 2.1 years (SD=4.2) in the intervention group compared to -1.3 years (SD=3.8) in controls (p<0.001, Cohen's d=0.85). This finding was replicated in an independent validation cohort (n=450)."

Expected Extraction:
{
  "entities": [{
    "name": "Horvath clock",
    "category": "epigenetic",
    "measurement_method": "DNA methylation array",
    "finding": "Age acceleration 2.1 years in treatment vs -1.3 years in controls",
    "tissue_source": "multi-tissue",
    "statistics": {"p_value": 0.001, "effect_size": 0.85, "sample_size": 1200},
    "validation_status": {"is_validated": true, "validation_cohorts": ["independent cohort"], "replication_count": 1},
    "controlled_terms": {"go_terms": ["GO:0006306"], "mesh_terms": ["D019175"]},
    "source_span": [0, 285],
    "confidence": 0.95
  }],
  "relationships": []
}

EXAMPLE 2 - PROTEOMIC BIOMARKER:

Input Text:
"Circulating GDF-15 levels were quantified by ELISA. Baseline GDF-15 was significantly higher in the aged group (median 850 pg/mL, IQR 720-1020) versus young controls (median 320 pg/mL, IQR 280-380, p<0.0001). GDF-15 correlated strongly with handgrip strength (r=-0.68, p<0.001) and predicted 5-year mortality (HR=1.42 per log unit, 95% CI 1.28-1.58, p<0.0001)."

Expected Extraction:
{
  "entities": [{
    "name": "GDF-15",
    "category": "proteomic",
    "measurement_method": "ELISA",
    "finding": "Median 850 pg/mL in aged vs 320 pg/mL in young",
    "tissue_source": "plasma",
    "statistics": {"p_value": 0.0001, "effect_size": 2.66},
    "controlled_terms": {"uniprot_ids": ["Q99988"], "go_terms": ["GO:0043065"], "kegg_pathways": ["hsa04060"]},
    "associations": [
      {"phenotype": "handgrip strength", "association_type": "correlation", "effect_measure": "correlation", "effect_value": -0.68, "statistics": {"p_value": 0.001}},
      {"phenotype": "5-year mortality", "association_type": "prediction", "effect_measure": "hazard_ratio", "effect_value": 1.42, "statistics": {"p_value": 0.0001, "confidence_interval_lower": 1.28, "confidence_interval_upper": 1.58}}
    ],
    "source_span": [0, 350],
    "confidence": 0.92
  }],
  "relationships": [{
    "subject": "GDF-15",
    "predicate": "predicts",
    "object": "5-year mortality",
    "confidence": 0.9
  }]
}
`

// renderPrompt executes the extraction prompt template for one abstract.
func renderPrompt(text string, fewShot bool) (string, error) {
	data := struct {
		FewShot string
		Text    string
	}{Text: text}
	if fewShot {
		data.FewShot = "\n" + fewShotSection
	}

	var buf bytes.Buffer
	if err := extractionPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API to extract biomarker
// records from an abstract.
type ClaudeBackend struct {
	APIKey  string
	Model   string
	FewShot bool
	Client  *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Extract calls the Claude API with the biomarker prompt for one
// abstract and parses the JSON reply into wire-shaped records.
func (c *ClaudeBackend) Extract(ctx context.Context, text string) (Response, error) {
	prompt, err := renderPrompt(text, c.FewShot)
	if err != nil {
		return Response{}, fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		System:    systemPrompt,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Response{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return Response{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		var parsed Response
		if err := json.Unmarshal([]byte(block.Text), &parsed); err != nil {
			return Response{}, fmt.Errorf("parsing extraction JSON: %w", err)
		}
		return parsed, nil
	}

	return Response{}, fmt.Errorf("no text content in Claude API response")
}

// Response is the wire-shaped extraction output for one abstract.
// Records are untrusted until mapped through the validating constructors.
type Response struct {
	Entities      []biomarker.EntityRecord       `json:"entities" yaml:"entities"`
	Relationships []biomarker.RelationshipRecord `json:"relationships,omitempty" yaml:"relationships,omitempty"`
}
