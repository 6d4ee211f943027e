package completeness

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Domain names one of the assessment categories.
type Domain string

// Assessment domains tracked by the default registry.
const (
	Physiotherapy Domain = "Physiotherapy"
	Biomechanics  Domain = "Biomechanics"
	Physiology    Domain = "Physiology"
	Nutrition     Domain = "Nutrition"
	Psychology    Domain = "Psychology"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// FieldPath addresses one required value inside a domain blob as section.field.
type FieldPath struct {
	Section string
	Field   string
}

// String renders the path in dotted form.
func (p FieldPath) String() string {
	return p.Section + "." + p.Field
}

// Strategy computes the completeness of one domain blob.
type Strategy func(def Definition, data map[string]interface{}) Result

// Definition describes what "complete" means for one domain.
type Definition struct {
	Name     Domain
	Required []FieldPath
	Strategy Strategy
	schema   *jsonschema.Schema
}

// Registry maps domain names to their definitions. It is immutable after
// construction and safe for concurrent use.
type Registry struct {
	order       []Domain
	definitions map[Domain]Definition
	aliases     map[string]Domain
}

// NewRegistry builds a registry from the supplied definitions. Definitions
// without a strategy use RequiredFields.
func NewRegistry(definitions ...Definition) *Registry {
	r := &Registry{
		order:       make([]Domain, 0, len(definitions)),
		definitions: make(map[Domain]Definition, len(definitions)),
		aliases:     make(map[string]Domain, len(definitions)),
	}
	for _, def := range definitions {
		if def.Strategy == nil {
			def.Strategy = RequiredFields
		}
		if _, exists := r.definitions[def.Name]; !exists {
			r.order = append(r.order, def.Name)
		}
		r.definitions[def.Name] = def
		r.aliases[strings.ToLower(string(def.Name))] = def.Name
	}
	return r
}

// Domains returns the registered domains in registration order.
func (r *Registry) Domains() []Domain {
	return append([]Domain(nil), r.order...)
}

// Lookup resolves a domain name case-insensitively.
func (r *Registry) Lookup(name string) (Definition, bool) {
	domain, ok := r.aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Definition{}, false
	}
	def, ok := r.definitions[domain]
	return def, ok
}

// Validate checks the shape of a domain blob against the domain's JSON schema.
// Domains without a schema accept any object.
func (r *Registry) Validate(name string, data map[string]interface{}) error {
	def, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown domain %q", name)
	}
	if def.schema == nil {
		return nil
	}

	normalized, err := normalize(data)
	if err != nil {
		return err
	}
	return def.schema.Validate(normalized)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry for the five assessment domains.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry(
			withSchema(Definition{
				Name: Physiotherapy,
				Required: []FieldPath{
					{"anamnesis", "mainComplaint"},
					{"anamnesis", "injuryHistory"},
					{"posture", "assessment"},
					{"mobility", "hip"},
					{"mobility", "ankle"},
					{"mobility", "shoulder"},
					{"strength", "tests"},
					{"functional", "fmsScore"},
				},
			}, "schemas/physiotherapy.json"),
			withSchema(Definition{
				Name: Biomechanics,
				Required: []FieldPath{
					{"running", "cadence"},
					{"running", "footStrike"},
					{"jump", "cmjHeight"},
					{"jump", "sjHeight"},
					{"balance", "yBalance"},
				},
			}, "schemas/biomechanics.json"),
			withSchema(Definition{
				Name: Physiology,
				Required: []FieldPath{
					{"anthropometry", "height"},
					{"anthropometry", "weight"},
					{"anthropometry", "bodyFat"},
					{"cardio", "vo2max"},
					{"cardio", "restingHeartRate"},
					{"lactate", "threshold"},
				},
			}, "schemas/physiology.json"),
			withSchema(Definition{
				Name: Nutrition,
				Required: []FieldPath{
					{"habits", "mealsPerDay"},
					{"habits", "hydrationLiters"},
					{"intake", "calories"},
					{"intake", "proteinGrams"},
					{"supplements", "uses"},
				},
			}, "schemas/nutrition.json"),
			withSchema(Definition{
				Name: Psychology,
				Required: []FieldPath{
					{"profile", "motivation"},
					{"profile", "anxiety"},
					{"profile", "focus"},
					{"interview", "resilience"},
					{"interview", "shortTermGoals"},
				},
			}, "schemas/psychology.json"),
		)
	})
	return defaultRegistry
}

// withSchema attaches an embedded JSON schema. The files ship with the
// binary, so a compile failure is a programming error.
func withSchema(def Definition, path string) Definition {
	raw, err := schemaFiles.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("completeness: read %s: %v", path, err))
	}
	schema, err := jsonschema.CompileString(path, string(raw))
	if err != nil {
		panic(fmt.Sprintf("completeness: compile %s: %v", path, err))
	}
	def.schema = schema
	return def
}

func normalize(data map[string]interface{}) (interface{}, error) {
	if data == nil {
		return map[string]interface{}{}, nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}
