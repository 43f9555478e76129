package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const analysisSchemaURL = "mem://analysis.schema.json"

const analysisSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["plagiarism_detected", "confidence_score"],
  "properties": {
    "is_valid_code": {"type": "boolean"},
    "plagiarism_detected": {"type": "boolean"},
    "confidence_score": {"type": "number", "minimum": 0, "maximum": 100},
    "likely_source": {"type": "string"},
    "explanation": {"type": "string"},
    "suspicious_elements": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "code_section": {"type": "string"},
          "likely_source": {"type": "string"},
          "confidence": {"type": "number", "minimum": 0, "maximum": 100},
          "explanation": {"type": "string"}
        }
      }
    },
    "red_flags": {"type": "array", "items": {"type": "string"}},
    "verification_questions": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "evaluation_metrics": {
      "type": "object",
      "properties": {
        "code_correctness": {
          "type": "object",
          "properties": {
            "status": {"type": "string"},
            "test_cases": {"type": ["string", "number"]},
            "failed_cases": {"type": ["string", "number"]}
          }
        },
        "code_efficiency": {
          "type": "object",
          "properties": {
            "time_complexity": {"type": "string"},
            "memory_usage": {"type": "string"},
            "execution_time": {"type": "string"}
          }
        },
        "code_security": {
          "type": "object",
          "properties": {
            "issues_found": {"type": "array", "items": {"type": "string"}},
            "recommendations": {"type": "array", "items": {"type": "string"}}
          }
        },
        "code_readability": {
          "type": "object",
          "properties": {
            "score": {"type": "number"},
            "suggestions": {"type": "array", "items": {"type": "string"}}
          }
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(analysisSchemaURL, strings.NewReader(analysisSchema)); err != nil {
			schemaErr = fmt.Errorf("add analysis schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(analysisSchemaURL)
	})
	return compiledSchema, schemaErr
}

// ParseAnalysis validates model output against the analysis schema and decodes it.
// Markdown code fences around the JSON are tolerated.
func ParseAnalysis(content string) (Analysis, json.RawMessage, error) {
	payload := stripCodeFence(content)
	if payload == "" {
		return Analysis{}, nil, fmt.Errorf("%w: empty response", ErrMalformedAnalysis)
	}

	var document interface{}
	decoder := json.NewDecoder(strings.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return Analysis{}, nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}

	schema, err := loadSchema()
	if err != nil {
		return Analysis{}, nil, err
	}
	if err := schema.Validate(document); err != nil {
		return Analysis{}, nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return Analysis{}, nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(payload)); err != nil {
		return Analysis{}, nil, fmt.Errorf("%w: %v", ErrMalformedAnalysis, err)
	}

	return analysis, json.RawMessage(compact.Bytes()), nil
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if newline := strings.Index(trimmed, "\n"); newline >= 0 {
		trimmed = trimmed[newline+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
