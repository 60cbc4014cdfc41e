package validator

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/pkg/patch"
)

type signup struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

type profile struct {
	Email patch.Field[string] `json:"email" validate:"omitempty,email"`
	Name  patch.Field[string] `json:"name" validate:"omitempty,max=5"`
}

func TestStruct_PlainFields(t *testing.T) {
	v := New()

	tests := []struct {
		name  string
		in    signup
		field string
	}{
		{"valid", signup{Username: "alice", Email: "alice@example.com"}, ""},
		{"missing username", signup{Email: "alice@example.com"}, "username"},
		{"bad email", signup{Username: "alice", Email: "nope"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *apperrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestStruct_PatchFields(t *testing.T) {
	v := New()

	decode := func(doc string) profile {
		var p profile
		require.NoError(t, json.Unmarshal([]byte(doc), &p))
		return p
	}

	assert.NoError(t, v.Struct(decode(`{}`)))
	assert.NoError(t, v.Struct(decode(`{"email": null}`)))
	assert.NoError(t, v.Struct(decode(`{"email": "bob@example.com"}`)))

	err := v.Struct(decode(`{"email": "bob"}`))
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	err = v.Struct(decode(`{"name": "too long"}`))
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
	assert.True(t, apperrors.IsValidation(err))
}
