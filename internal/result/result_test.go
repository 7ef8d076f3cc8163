package result_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/corkboardhq/corkboard/internal/result"
)

func decode(t *testing.T, r result.Result) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(r.JSON()), &m); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return m
}

func TestOK_Shape(t *testing.T) {
	m := decode(t, result.OK(map[string]string{"id": "w1"}))

	if m["success"] != true {
		t.Errorf("success = %v, want true", m["success"])
	}
	if _, ok := m["data"]; !ok {
		t.Error("data missing from success envelope")
	}
	for _, k := range []string{"error", "code", "message"} {
		if _, ok := m[k]; ok {
			t.Errorf("%s present in plain success envelope", k)
		}
	}
}

func TestOKf_Message(t *testing.T) {
	r := result.OKf([]string{}, "found %d tasks", 0)
	if r.Message != "found 0 tasks" {
		t.Errorf("message = %q, want %q", r.Message, "found 0 tasks")
	}
	if !r.Success {
		t.Error("OKf envelope not marked success")
	}
}

func TestErrorf_Shape(t *testing.T) {
	m := decode(t, result.Errorf(result.CodeTaskNotFound, "Task with ID %s not found", "t9"))

	if m["success"] != false {
		t.Errorf("success = %v, want false", m["success"])
	}
	if m["error"] != "Task with ID t9 not found" {
		t.Errorf("error = %q", m["error"])
	}
	if m["code"] != "TASK_NOT_FOUND" {
		t.Errorf("code = %q, want TASK_NOT_FOUND", m["code"])
	}
	if _, ok := m["data"]; ok {
		t.Error("data present in error envelope")
	}
}

func TestError_PassesMessageVerbatim(t *testing.T) {
	backend := errors.New(`pq: relation "tasks" does not exist`)
	r := result.Error(result.CodeDatabaseError, backend)

	if r.Error != backend.Error() {
		t.Errorf("error = %q, want backend message verbatim", r.Error)
	}
	if r.Code != result.CodeDatabaseError {
		t.Errorf("code = %q, want %q", r.Code, result.CodeDatabaseError)
	}
}

func TestJSON_NilSliceData(t *testing.T) {
	var tasks []string
	m := decode(t, result.OK(tasks))
	// A typed nil slice still counts as present data.
	if _, ok := m["data"]; !ok {
		t.Error("data dropped for nil slice payload")
	}
}
