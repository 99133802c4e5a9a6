package llm

import (
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// DecodeStructured turns raw model output into a queryable JSON object.
// Models wrap JSON in prose or emit slightly broken syntax often enough that
// decoding is a two-step recovery: carve out the outermost object, then run
// it through jsonrepair before parsing. An error here means the payload is
// beyond repair; every call site must handle that branch explicitly.
func DecodeStructured(raw string) (gjson.Result, error) {
	carved := carveObject(raw)
	if carved == "" {
		return gjson.Result{}, fmt.Errorf("no JSON object in model output")
	}

	repaired, err := jsonrepair.JSONRepair(carved)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("repairing model JSON: %w", err)
	}
	if !gjson.Valid(repaired) {
		return gjson.Result{}, fmt.Errorf("model output is not valid JSON after repair")
	}

	result := gjson.Parse(repaired)
	if !result.IsObject() {
		return gjson.Result{}, fmt.Errorf("model output is not a JSON object")
	}
	return result, nil
}

// carveObject returns the substring from the first '{' to the last '}', or
// "" when no object is present.
func carveObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}
