package ai

// MockProvider labels verdicts produced without a model.
const MockProvider = "mock"

// MockAnalysis returns the fixed placeholder verdict used when no analyzer is configured.
func MockAnalysis() Analysis {
	return Analysis{
		PlagiarismDetected:    false,
		ConfidenceScore:       75,
		LikelySource:          "Original student work",
		Explanation:           "This is a mock analysis as the AI analyzer is unavailable",
		SuspiciousElements:    []SuspiciousElement{},
		RedFlags:              []string{},
		VerificationQuestions: []string{"Can you explain how this code works?"},
		Recommendations:       []string{"Add more comments to improve readability"},
		EvaluationMetrics: EvaluationMetrics{
			CodeCorrectness: CodeCorrectness{Status: "Passed", TestCases: "5", FailedCases: "0"},
			CodeEfficiency:  CodeEfficiency{TimeComplexity: "O(n)", MemoryUsage: "8MB", ExecutionTime: "100ms"},
			CodeSecurity:    CodeSecurity{IssuesFound: []string{}, Recommendations: []string{}},
			CodeReadability: CodeReadability{Score: 7.5, Suggestions: []string{"Add more documentation"}},
		},
	}
}
