package model

import "testing"

func TestExtractStringField(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		data   string
		field  string
		want   string
		wantOK bool
	}{
		{
			name:   "complete document",
			data:   `{"csv": "a,b,c\n1,2,3"}`,
			field:  "csv",
			want:   "a,b,c\n1,2,3",
			wantOK: true,
		},
		{
			name:   "truncated mid value",
			data:   `{"csv": "name,role\nalice`,
			field:  "csv",
			want:   "name,role\nalice",
			wantOK: true,
		},
		{
			name:   "field not yet started",
			data:   `{"cs`,
			field:  "csv",
			wantOK: false,
		},
		{
			name:   "colon but no opening quote yet",
			data:   `{"csv":`,
			field:  "csv",
			wantOK: false,
		},
		{
			name:   "empty value so far",
			data:   `{"csv": "`,
			field:  "csv",
			want:   "",
			wantOK: true,
		},
		{
			name:   "dangling escape held back",
			data:   `{"markdown": "line one\`,
			field:  "markdown",
			want:   "line one",
			wantOK: true,
		},
		{
			name:   "escaped quote inside value",
			data:   `{"markdown": "say \"hi\" to`,
			field:  "markdown",
			want:   `say "hi" to`,
			wantOK: true,
		},
		{
			name:   "unicode escape",
			data:   `{"csv": "café,tea"}`,
			field:  "csv",
			want:   "café,tea",
			wantOK: true,
		},
		{
			name:   "surrogate pair",
			data:   `{"csv": "😀 ok"}`,
			field:  "csv",
			want:   "😀 ok",
			wantOK: true,
		},
		{
			name:   "truncated unicode escape held back",
			data:   `{"csv": "rows\u00`,
			field:  "csv",
			want:   "rows",
			wantOK: true,
		},
		{
			name:   "value ends before trailing fields",
			data:   `{"csv": "done", "other": 1}`,
			field:  "csv",
			want:   "done",
			wantOK: true,
		},
		{
			name:   "wrong field",
			data:   `{"markdown": "text"}`,
			field:  "csv",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ExtractStringField(tt.data, tt.field)
			if ok != tt.wantOK {
				t.Fatalf("ExtractStringField() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractStringField() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractStringFieldGrowsMonotonically(t *testing.T) {
	t.Parallel()

	full := `{"csv": "a,b\n1,2\n3,4"}`
	var prev string
	for i := 0; i <= len(full); i++ {
		value, ok := ExtractStringField(full[:i], "csv")
		if !ok {
			continue
		}
		if len(value) < len(prev) {
			t.Fatalf("value shrank at prefix %d: %q -> %q", i, prev, value)
		}
		prev = value
	}
	if prev != "a,b\n1,2\n3,4" {
		t.Errorf("final value = %q", prev)
	}
}
