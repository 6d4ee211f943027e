package completeness

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Status is the completion state of a domain or of a whole record.
type Status string

// Completion states ordered pending < in_progress < completed.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Rank orders statuses for comparisons.
func (s Status) Rank() int {
	switch s {
	case StatusCompleted:
		return 2
	case StatusInProgress:
		return 1
	default:
		return 0
	}
}

// Result reports the completeness of one domain blob.
type Result struct {
	Domain  Domain   `json:"domain"`
	Status  Status   `json:"status"`
	Filled  int      `json:"filled"`
	Total   int      `json:"total"`
	Missing []string `json:"missing"`
}

// Evaluate computes the completeness of a domain blob. Unknown domains are
// pending and a nil blob is treated as empty.
func (r *Registry) Evaluate(name string, data map[string]interface{}) Result {
	def, ok := r.Lookup(name)
	if !ok {
		return Result{Domain: Domain(name), Status: StatusPending, Missing: []string{}}
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	return def.Strategy(def, data)
}

// EvaluateDomain returns only the status projection of Evaluate.
func (r *Registry) EvaluateDomain(name string, data map[string]interface{}) Status {
	return r.Evaluate(name, data).Status
}

// EvaluateDomain evaluates against the default registry.
func EvaluateDomain(name string, data map[string]interface{}) Status {
	return Default().EvaluateDomain(name, data)
}

// RequiredFields counts filled required paths.
func RequiredFields(def Definition, data map[string]interface{}) Result {
	result := Result{
		Domain:  def.Name,
		Total:   len(def.Required),
		Missing: make([]string, 0),
	}

	for _, path := range def.Required {
		if IsFilled(lookup(data, path)) {
			result.Filled++
			continue
		}
		result.Missing = append(result.Missing, path.String())
	}

	switch {
	case result.Total == 0 || result.Filled == 0:
		result.Status = StatusPending
	case result.Filled == result.Total:
		result.Status = StatusCompleted
	default:
		result.Status = StatusInProgress
	}
	return result
}

func lookup(data map[string]interface{}, path FieldPath) interface{} {
	section, ok := asMap(data[path.Section])
	if !ok {
		return nil
	}
	return section[path.Field]
}

// IsFilled reports whether a value counts towards completeness. Any number
// or boolean is filled, strings must be non-blank, and objects or arrays
// must be non-empty with every member filled.
func IsFilled(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case bool, json.Number,
		float32, float64,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case map[string]interface{}:
		return allFilled(v)
	case []interface{}:
		if len(v) == 0 {
			return false
		}
		for _, item := range v {
			if !IsFilled(item) {
				return false
			}
		}
		return true
	}

	if m, ok := asMap(value); ok {
		return allFilled(m)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if !IsFilled(rv.Index(i).Interface()) {
				return false
			}
		}
		return true
	case reflect.Pointer:
		if rv.IsNil() {
			return false
		}
		return IsFilled(rv.Elem().Interface())
	}
	return false
}

func allFilled(m map[string]interface{}) bool {
	if len(m) == 0 {
		return false
	}
	for _, item := range m {
		if !IsFilled(item) {
			return false
		}
	}
	return true
}

// asMap accepts map[string]interface{} and named map types such as
// datatypes.JSONMap.
func asMap(value interface{}) (map[string]interface{}, bool) {
	if value == nil {
		return nil, false
	}
	if m, ok := value.(map[string]interface{}); ok {
		return m, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
