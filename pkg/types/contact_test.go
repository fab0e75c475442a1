package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactValidate(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		wantErr error
	}{
		{
			name:    "name and number present",
			contact: Contact{Name: "Alice", Number: "555-0001"},
		},
		{
			name:    "empty name rejected",
			contact: Contact{Number: "555-0001"},
			wantErr: ErrInvalidName,
		},
		{
			name:    "empty number rejected",
			contact: Contact{Name: "Alice"},
			wantErr: ErrInvalidNumber,
		},
		{
			name:    "both empty reports name first",
			contact: Contact{},
			wantErr: ErrInvalidName,
		},
		{
			name:    "whitespace is not trimmed",
			contact: Contact{Name: " ", Number: " "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.contact.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
