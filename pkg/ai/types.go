package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrMalformedAnalysis is returned when the model output does not match the verdict schema.
var ErrMalformedAnalysis = errors.New("malformed analysis")

// AnalysisInput contains the code and its context sent to the model.
type AnalysisInput struct {
	Code                  string
	Language              string
	CourseLevel           string
	AssignmentDescription string
	StudentID             string
	AssignmentID          string
	PreviousSubmissions   []string
}

// FlexString accepts either a JSON string or number and keeps its textual form.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = ""
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*f = FlexString(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}
	*f = FlexString(number.String())
	return nil
}

// SuspiciousElement is one code section the model flagged.
type SuspiciousElement struct {
	CodeSection  string  `json:"code_section"`
	LikelySource string  `json:"likely_source"`
	Confidence   float64 `json:"confidence"`
	Explanation  string  `json:"explanation"`
}

// CodeCorrectness summarises test outcomes as judged by the model.
type CodeCorrectness struct {
	Status      string     `json:"status"`
	TestCases   FlexString `json:"test_cases"`
	FailedCases FlexString `json:"failed_cases"`
}

// CodeEfficiency holds complexity and resource estimates.
type CodeEfficiency struct {
	TimeComplexity string `json:"time_complexity"`
	MemoryUsage    string `json:"memory_usage"`
	ExecutionTime  string `json:"execution_time"`
}

// CodeSecurity lists security findings.
type CodeSecurity struct {
	IssuesFound     []string `json:"issues_found"`
	Recommendations []string `json:"recommendations"`
}

// CodeReadability scores style and documentation.
type CodeReadability struct {
	Score       float64  `json:"score"`
	Suggestions []string `json:"suggestions"`
}

// EvaluationMetrics is the fixed quality breakdown attached to every verdict.
type EvaluationMetrics struct {
	CodeCorrectness CodeCorrectness `json:"code_correctness"`
	CodeEfficiency  CodeEfficiency  `json:"code_efficiency"`
	CodeSecurity    CodeSecurity    `json:"code_security"`
	CodeReadability CodeReadability `json:"code_readability"`
}

// Analysis is the structured plagiarism verdict.
type Analysis struct {
	IsValidCode           *bool               `json:"is_valid_code,omitempty"`
	PlagiarismDetected    bool                `json:"plagiarism_detected"`
	ConfidenceScore       float64             `json:"confidence_score"`
	LikelySource          string              `json:"likely_source"`
	Explanation           string              `json:"explanation"`
	SuspiciousElements    []SuspiciousElement `json:"suspicious_elements"`
	RedFlags              []string            `json:"red_flags"`
	VerificationQuestions []string            `json:"verification_questions"`
	Recommendations       []string            `json:"recommendations"`
	EvaluationMetrics     EvaluationMetrics   `json:"evaluation_metrics"`
}

// AnalysisResult pairs the decoded verdict with the exact JSON returned by the model.
type AnalysisResult struct {
	Analysis Analysis        `json:"analysis"`
	Raw      json.RawMessage `json:"raw"`
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
}

// Analyzer describes a model capable of judging code originality.
type Analyzer interface {
	Analyze(ctx context.Context, input AnalysisInput) (AnalysisResult, error)
	Provider() string
}
