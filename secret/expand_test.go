package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandStrict(t *testing.T) {
	t.Setenv("NIXMEDIC_TEST_TOKEN", "s3cret")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "https://example.com/hook", "https://example.com/hook", false},
		{"braced", "https://example.com/hook?token=${NIXMEDIC_TEST_TOKEN}", "https://example.com/hook?token=s3cret", false},
		{"escaped dollar", "cost is $$5", "cost is $5", false},
		{"missing", "${NIXMEDIC_TEST_ABSENT}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandStrict(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMissingEnv) {
					t.Fatalf("error = %v, want ErrMissingEnv", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExpandStrict() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ExpandStrict() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandStrict_ReportsAllMissing(t *testing.T) {
	_, err := ExpandStrict("${NIXMEDIC_TEST_B} ${NIXMEDIC_TEST_A}")
	if err == nil {
		t.Fatal("error = nil, want missing variables")
	}
	// Missing names are sorted for a stable message.
	msg := err.Error()
	if !strings.Contains(msg, "NIXMEDIC_TEST_A, NIXMEDIC_TEST_B") {
		t.Errorf("error = %q, want sorted variable names", msg)
	}
}
