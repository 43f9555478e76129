package ai

import (
	"fmt"
	"strings"
)

const notProvided = "Not provided"

func analyzerSystemPrompt() string {
	return `You review student code submissions for academic integrity and quality.

Responsibilities:
1. Validate that the input is code in the stated language. If it is not, set "is_valid_code" to false and explain why no analysis was possible.
2. Look for signs of AI generated code: uniform formatting, unnatural or excessive comments, generic identifiers, techniques beyond the stated course level, and an absence of the small mistakes students usually make.
3. Look for code copied from public sources such as Stack Overflow, GitHub or tutorial sites: textbook algorithms, mixed conventions and abrupt changes of style.
4. Judge originality against the course level and the assignment description. Compare with previous submissions from the same student when they are supplied.
5. Break the code into logical sections, flag suspicious ones with their own confidence, and give an overall confidence score between 0 and 100.
6. Suggest questions that would confirm authorship and recommendations for improvement.

Also evaluate correctness, efficiency (Big-O, memory, time), security (injection, XSS, hardcoded secrets, vulnerable dependencies) and readability (style, naming, documentation).

Reply with a single JSON object and nothing else, using exactly these fields:
{
  "is_valid_code": true,
  "plagiarism_detected": false,
  "confidence_score": 0,
  "likely_source": "AI-generated | Online resource | Original student work",
  "explanation": "reasoning for the conclusion",
  "suspicious_elements": [
    {"code_section": "lines or block", "likely_source": "AI-generated | Online resource", "confidence": 0, "explanation": "why it is suspicious"}
  ],
  "red_flags": ["key concerns"],
  "verification_questions": ["questions for the student"],
  "recommendations": ["improvements"],
  "evaluation_metrics": {
    "code_correctness": {"status": "Passed | Failed", "test_cases": "number executed", "failed_cases": "number failed"},
    "code_efficiency": {"time_complexity": "O(n)", "memory_usage": "8MB", "execution_time": "100ms"},
    "code_security": {"issues_found": [], "recommendations": []},
    "code_readability": {"score": 0, "suggestions": []}
  }
}`
}

func buildUserPrompt(input AnalysisInput) string {
	builder := strings.Builder{}
	builder.WriteString("Analyze this code for plagiarism and evaluate its quality.\n\n")
	builder.WriteString("## Code\n")
	builder.WriteString(input.Code)
	builder.WriteString("\n\n## Context\n")
	fmt.Fprintf(&builder, "- Language: %s\n", orNotProvided(input.Language))
	fmt.Fprintf(&builder, "- Course Level: %s\n", orNotProvided(input.CourseLevel))
	fmt.Fprintf(&builder, "- Assignment Description: %s\n", orNotProvided(input.AssignmentDescription))
	if input.StudentID != "" {
		fmt.Fprintf(&builder, "- Student: %s\n", input.StudentID)
	}
	if input.AssignmentID != "" {
		fmt.Fprintf(&builder, "- Assignment: %s\n", input.AssignmentID)
	}
	if len(input.PreviousSubmissions) > 0 {
		builder.WriteString("\n## Previous Submissions\n")
		for i, previous := range input.PreviousSubmissions {
			fmt.Fprintf(&builder, "### Submission %d\n%s\n", i+1, previous)
		}
	}
	builder.WriteString("\nReturn JSON in the format described in the system prompt.")
	return builder.String()
}

func orNotProvided(value string) string {
	if strings.TrimSpace(value) == "" {
		return notProvided
	}
	return value
}
