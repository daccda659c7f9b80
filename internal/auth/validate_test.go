package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCredentials(t *testing.T) {
	v := NewValidator(6)

	tests := []struct {
		name  string
		creds Credentials
		want  map[string]string
	}{
		{
			name:  "valid",
			creds: Credentials{Email: "reader@example.com", Password: "secret1"},
		},
		{
			name:  "trimmed email",
			creds: Credentials{Email: "  reader@example.com ", Password: "secret1"},
		},
		{
			name:  "empty form",
			creds: Credentials{},
			want:  map[string]string{"email": "is required", "password": "is required"},
		},
		{
			name:  "bad email",
			creds: Credentials{Email: "reader", Password: "secret1"},
			want:  map[string]string{"email": "is not valid"},
		},
		{
			name:  "short password",
			creds: Credentials{Email: "reader@example.com", Password: "abc"},
			want:  map[string]string{"password": "must be at least 6 characters"},
		},
		{
			name:  "both wrong",
			creds: Credentials{Email: "x@", Password: "12345"},
			want:  map[string]string{"email": "is not valid", "password": "must be at least 6 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCredentials(tt.creds)
			if len(tt.want) == 0 {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Len(t, verr.Errors, len(tt.want))
			for field, msg := range tt.want {
				assert.Equal(t, []string{msg}, verr.ForField(field), "field %s", field)
			}
		})
	}
}

func TestValidateCredentials_ConfiguredMinimum(t *testing.T) {
	v := NewValidator(10)

	err := v.ValidateCredentials(Credentials{Email: "a@b.co", Password: "ninechars"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"must be at least 10 characters"}, verr.ForField("password"))

	assert.NoError(t, NewValidator(0).ValidateCredentials(Credentials{Email: "a@b.co", Password: "sixsix"}))
}
