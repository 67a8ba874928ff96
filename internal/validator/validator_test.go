package validator

import (
	"errors"
	"testing"

	"github.com/aretw0/flume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]any {
	return map[string]any{
		"customer_name": "Alice",
		"email":         "ALICE@X.com",
		"query":         "My order #123 hasn't arrived",
		"priority":      "high",
		"ticket_id":     "",
	}
}

func TestValidate_Valid(t *testing.T) {
	out, err := Validate(validPayload())
	require.NoError(t, err)

	assert.Equal(t, "Alice", out["customer_name"])
	assert.Equal(t, "ALICE@X.com", out["email"], "validation does not normalize; stages do")
	assert.Equal(t, "", out["ticket_id"], "empty ticket_id passes validation")
}

func TestValidate_PassThroughFields(t *testing.T) {
	payload := validPayload()
	payload["channel"] = "web"
	payload["attempts"] = 2

	out, err := Validate(payload)
	require.NoError(t, err)
	assert.Equal(t, "web", out["channel"])
	assert.Equal(t, 2, out["attempts"])
}

func TestValidate_EnumeratesAllMissingFields(t *testing.T) {
	_, err := Validate(map[string]any{"query": "help"})
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))

	var names []string
	for _, f := range verr.Fields {
		names = append(names, f.Field)
	}
	assert.ElementsMatch(t, []string{"customer_name", "email", "priority", "ticket_id"}, names)
}

func TestValidate_EmptyIdentityFields(t *testing.T) {
	payload := validPayload()
	payload["customer_name"] = ""
	payload["query"] = ""

	_, err := Validate(payload)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	for _, f := range verr.Fields {
		assert.Equal(t, "must not be empty", f.Reason)
	}
}

func TestValidate_WrongType(t *testing.T) {
	payload := validPayload()
	payload["priority"] = 5

	_, err := Validate(payload)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.NotEmpty(t, verr.Fields)
}
