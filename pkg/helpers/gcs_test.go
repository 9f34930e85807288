package helpers

import "testing"

func TestParseGSURL(t *testing.T) {
	tests := []struct {
		in             string
		bucket, object string
		wantErr        bool
	}{
		{"gs://seeds/users.json", "seeds", "users.json", false},
		{"gs://seeds/nested/users.json", "seeds", "nested/users.json", false},
		{"gs://seeds", "", "", true},
		{"gs:///users.json", "", "", true},
		{"users.json", "", "", true},
	}
	for _, tt := range tests {
		b, o, err := ParseGSURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGSURL(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if b != tt.bucket || o != tt.object {
			t.Errorf("ParseGSURL(%q) = %q, %q", tt.in, b, o)
		}
	}
}
