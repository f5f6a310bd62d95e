package core

import (
	"errors"
	"fmt"
	"testing"
)

func patentDefinition() FormDefinition {
	return FormDefinition{
		Info: FormInfo{Key: "patent", Label: "Brevete", Sheet: "Brevete", Audience: AudienceUser},
		Fields: []FieldSpec{
			{Key: "title", Header: "Titlu", Required: true},
			{Key: "patentNumber", Header: "Numarul Brevetului", Required: true},
			{Key: "authors", Header: "Autori"},
		},
	}
}

func TestValidateFields(t *testing.T) {
	def := patentDefinition()

	tests := []struct {
		name       string
		fields     Fields
		wantFields []string
	}{
		{
			name:   "all required present",
			fields: Fields{"title": "Senzor", "patentNumber": "RO123"},
		},
		{
			name:   "numeric value counts as present",
			fields: Fields{"title": "Senzor", "patentNumber": float64(123)},
		},
		{
			name:       "missing required field",
			fields:     Fields{"title": "Senzor"},
			wantFields: []string{"patentNumber"},
		},
		{
			name:       "blank and whitespace fields",
			fields:     Fields{"title": "", "patentNumber": "   "},
			wantFields: []string{"title", "patentNumber"},
		},
		{
			name:       "nil value",
			fields:     Fields{"title": nil, "patentNumber": "RO1"},
			wantFields: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFields(def, tt.fields)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateFields() error = %v, want nil", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("ValidateFields() error = %v, want ValidationErrors", err)
			}
			if len(verrs) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %v", len(verrs), len(tt.wantFields), verrs)
			}
			for i, f := range tt.wantFields {
				if verrs[i].Field != f {
					t.Errorf("error[%d].Field = %q, want %q", i, verrs[i].Field, f)
				}
			}
		})
	}
}

func TestSanitizeFields_DropsUnknownKeys(t *testing.T) {
	def := patentDefinition()
	got := SanitizeFields(def, Fields{"title": "T", "owner": "hijack", "extra": 1})

	if len(got) != 1 {
		t.Fatalf("SanitizeFields() kept %d fields, want 1: %v", len(got), got)
	}
	if got["title"] != "T" {
		t.Errorf("title = %v, want %q", got["title"], "T")
	}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name       string
		user       User
		wantFields []string
	}{
		{
			name: "valid",
			user: User{Identifier: "D123", Email: "ana@uni.ro", AlternativeEmail: "ana@gmail.com"},
		},
		{
			name:       "missing identifier",
			user:       User{Email: "ana@uni.ro", AlternativeEmail: "ana@gmail.com"},
			wantFields: []string{"identifier"},
		},
		{
			name:       "malformed emails",
			user:       User{Identifier: "D123", Email: "not-an-email", AlternativeEmail: "also bad"},
			wantFields: []string{"email", "alternativeEmail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUser(tt.user)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("ValidateUser() error = %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("ValidateUser() error = %v, want ValidationErrors", err)
			}
			if len(verrs) != len(tt.wantFields) {
				t.Fatalf("got %d errors, want %d: %v", len(verrs), len(tt.wantFields), verrs)
			}
			for i, f := range tt.wantFields {
				if verrs[i].Field != f {
					t.Errorf("error[%d].Field = %q, want %q", i, verrs[i].Field, f)
				}
			}
		})
	}
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ValidationError{Field: "x", Message: "bad"}, true},
		{ValidationErrors{{Field: "x", Message: "bad"}}, true},
		{fmt.Errorf("row 3: %w", ValidationErrors{{Field: "x"}}), true},
		{errors.New("boom"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsValidationError(tt.err); got != tt.want {
			t.Errorf("IsValidationError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
