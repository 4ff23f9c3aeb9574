package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContactFilter(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[FilterField]string
	}{
		{name: "empty", raw: "", want: map[FilterField]string{}},
		{name: "single", raw: "name::Alan", want: map[FilterField]string{FieldName: "Alan"}},
		{
			name: "conjunction",
			raw:  "name::Alan|surname::Brown",
			want: map[FilterField]string{FieldName: "Alan", FieldSurname: "Brown"},
		},
		{
			name: "repeated field keeps last",
			raw:  "name::Alan|name::Bob",
			want: map[FilterField]string{FieldName: "Bob"},
		},
		{
			name: "birthday",
			raw:  "birthday::1990-06-28",
			want: map[FilterField]string{FieldBirthday: "1990-06-28"},
		},
		{name: "empty value", raw: "phone::", want: map[FilterField]string{FieldPhone: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseContactFilter(tt.raw)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, f.Map()); diff != "" {
				t.Fatalf("ParseContactFilter(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestParseContactFilter_PreservesClauseOrder(t *testing.T) {
	f, err := ParseContactFilter("surname::Brown|name::Alan")
	require.NoError(t, err)
	assert.Equal(t, ContactFilter{
		{Field: FieldSurname, Value: "Brown"},
		{Field: FieldName, Value: "Alan"},
	}, f)
}

func TestParseContactFilter_Rejects(t *testing.T) {
	for _, raw := range []string{
		"age::30",
		"user_id::2",
		"name=Alan",
		"name::Alan|",
		"name::a::b",
		"birthday::yesterday",
		"birthday::",
	} {
		_, err := ParseContactFilter(raw)
		assert.ErrorIs(t, err, ErrInvalidFilter, "filter %q", raw)
	}
}
