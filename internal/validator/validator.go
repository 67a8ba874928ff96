// Package validator checks raw input payloads against the required
// field schema before any stage executes. A violation is the only
// fatal path of a run.
package validator

import (
	"github.com/aretw0/flume/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Input is the typed view of the minimal payload schema. Fields not
// covered here pass through untouched via Rest.
type Input struct {
	CustomerName string         `mapstructure:"customer_name"`
	Email        string         `mapstructure:"email"`
	Query        string         `mapstructure:"query"`
	Priority     string         `mapstructure:"priority"`
	TicketID     string         `mapstructure:"ticket_id"`
	Rest         map[string]any `mapstructure:",remain"`
}

// requiredKeys must be present in every payload. ticket_id and
// priority may be empty (later stages default them); the identity and
// query fields must be non-empty.
var requiredKeys = []string{"customer_name", "email", "query", "priority", "ticket_id"}

var nonEmptyKeys = map[string]bool{
	"customer_name": true,
	"email":         true,
	"query":         true,
}

// Validate checks the payload and returns the fields to seed the
// execution state with: the five schema fields plus every pass-through
// key. On violation it returns a *domain.ValidationError enumerating
// all offending fields.
func Validate(payload map[string]any) (map[string]any, error) {
	var in Input
	var meta mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:   &in,
		Metadata: &meta,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(payload); err != nil {
		var fields []domain.FieldError
		if merr, ok := err.(*mapstructure.Error); ok {
			for _, msg := range merr.Errors {
				fields = append(fields, domain.FieldError{Field: "payload", Reason: msg})
			}
		} else {
			fields = append(fields, domain.FieldError{Field: "payload", Reason: err.Error()})
		}
		return nil, &domain.ValidationError{Fields: fields}
	}

	unset := make(map[string]bool, len(meta.Unset))
	for _, k := range meta.Unset {
		unset[k] = true
	}

	var fields []domain.FieldError
	values := map[string]string{
		"customer_name": in.CustomerName,
		"email":         in.Email,
		"query":         in.Query,
		"priority":      in.Priority,
		"ticket_id":     in.TicketID,
	}
	for _, key := range requiredKeys {
		if unset[key] {
			fields = append(fields, domain.FieldError{Field: key, Reason: "required field is missing"})
			continue
		}
		if nonEmptyKeys[key] && values[key] == "" {
			fields = append(fields, domain.FieldError{Field: key, Reason: "must not be empty"})
		}
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	validated := make(map[string]any, len(in.Rest)+len(values))
	for k, v := range in.Rest {
		validated[k] = v
	}
	for k, v := range values {
		validated[k] = v
	}
	return validated, nil
}
