package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const validVerdict = `{
  "is_valid_code": true,
  "plagiarism_detected": true,
  "confidence_score": 82,
  "likely_source": "AI-generated",
  "explanation": "uniform style",
  "suspicious_elements": [{"code_section": "lines 1-4", "likely_source": "AI-generated", "confidence": 90, "explanation": "textbook"}],
  "red_flags": ["overly polished"],
  "verification_questions": ["Why a map here?"],
  "recommendations": ["Explain your approach"],
  "evaluation_metrics": {
    "code_correctness": {"status": "Passed", "test_cases": 5, "failed_cases": "0"},
    "code_efficiency": {"time_complexity": "O(n)", "memory_usage": "8MB", "execution_time": "10ms"},
    "code_security": {"issues_found": [], "recommendations": []},
    "code_readability": {"score": 8.5, "suggestions": []}
  }
}`

func TestParseAnalysisAcceptsValidVerdict(t *testing.T) {
	analysis, raw, err := ParseAnalysis(validVerdict)
	require.NoError(t, err)
	require.True(t, analysis.PlagiarismDetected)
	require.InDelta(t, 82, analysis.ConfidenceScore, 0.001)
	require.NotNil(t, analysis.IsValidCode)
	require.True(t, *analysis.IsValidCode)
	require.Len(t, analysis.SuspiciousElements, 1)

	require.Equal(t, FlexString("5"), analysis.EvaluationMetrics.CodeCorrectness.TestCases)
	require.Equal(t, FlexString("0"), analysis.EvaluationMetrics.CodeCorrectness.FailedCases)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "evaluation_metrics")
}

func TestParseAnalysisStripsCodeFence(t *testing.T) {
	analysis, _, err := ParseAnalysis("```json\n{\"plagiarism_detected\": false, \"confidence_score\": 10}\n```")
	require.NoError(t, err)
	require.False(t, analysis.PlagiarismDetected)
	require.InDelta(t, 10, analysis.ConfidenceScore, 0.001)
}

func TestParseAnalysisRejectsMalformedContent(t *testing.T) {
	cases := map[string]string{
		"empty":            "   ",
		"not json":         "I think this code is original.",
		"missing required": `{"likely_source": "Online resource"}`,
		"score too high":   `{"plagiarism_detected": false, "confidence_score": 140}`,
		"wrong type":       `{"plagiarism_detected": "no", "confidence_score": 10}`,
		"array":            `[1, 2, 3]`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseAnalysis(content)
			require.ErrorIs(t, err, ErrMalformedAnalysis)
		})
	}
}

func TestMockAnalysisMatchesSchema(t *testing.T) {
	payload, err := json.Marshal(MockAnalysis())
	require.NoError(t, err)

	analysis, _, err := ParseAnalysis(string(payload))
	require.NoError(t, err)
	require.Equal(t, "Original student work", analysis.LikelySource)
	require.InDelta(t, 75, analysis.ConfidenceScore, 0.001)
}

func TestBuildUserPromptFillsMissingContext(t *testing.T) {
	prompt := buildUserPrompt(AnalysisInput{
		Code:                "print(1)",
		Language:            "python",
		PreviousSubmissions: []string{"print(0)"},
	})

	require.Contains(t, prompt, "print(1)")
	require.Contains(t, prompt, "- Language: python")
	require.Contains(t, prompt, "- Course Level: Not provided")
	require.Contains(t, prompt, "### Submission 1\nprint(0)")
}
