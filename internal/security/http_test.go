package security

import (
	"net"
	"testing"

	"github.com/easel-ai/easel/internal/log"
)

func parseIP(t *testing.T, s string) net.IP {
	t.Helper()
	ip := net.ParseIP(s)
	if ip == nil {
		t.Fatalf("invalid test IP %q", s)
	}
	return ip
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	v := NewHTTP(log.NewNop())

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{
			name:    "localhost blocked",
			url:     "http://localhost:8080/admin",
			wantErr: true,
		},
		{
			name:    "loopback IP blocked",
			url:     "http://127.0.0.1/secret",
			wantErr: true,
		},
		{
			name:    "aws metadata blocked",
			url:     "http://169.254.169.254/latest/meta-data/",
			wantErr: true,
		},
		{
			name:    "gcp metadata blocked",
			url:     "http://metadata.google.internal/computeMetadata/v1/",
			wantErr: true,
		},
		{
			name:    "file scheme blocked",
			url:     "file:///etc/passwd",
			wantErr: true,
		},
		{
			name:    "ftp scheme blocked",
			url:     "ftp://example.com/file",
			wantErr: true,
		},
		{
			name:    "empty hostname blocked",
			url:     "http://",
			wantErr: true,
		},
		{
			name:    "gopher scheme blocked",
			url:     "gopher://example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := v.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestIsDangerousHostname(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hostname string
		want     bool
	}{
		{"localhost", true},
		{"LOCALHOST", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"169.254.169.254", true},
		{"metadata.google.internal", true},
		{"example.com", false},
		{"www.google.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			t.Parallel()

			if got := isDangerousHostname(tt.hostname); got != tt.want {
				t.Errorf("isDangerousHostname(%q) = %v, want %v", tt.hostname, got, tt.want)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"172.31.255.255", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"169.254.169.254", true},
		{"0.0.0.0", true},
		{"224.0.0.1", true},
		{"8.8.8.8", false},
		{"1.1.1.1", false},
		{"93.184.216.34", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			t.Parallel()

			ip := parseIP(t, tt.ip)
			if got := isPrivateIP(ip); got != tt.want {
				t.Errorf("isPrivateIP(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestCreateSafeHTTPClient(t *testing.T) {
	t.Parallel()

	v := NewHTTP(log.NewNop())
	client := v.CreateSafeHTTPClient()

	if client.CheckRedirect == nil {
		t.Error("expected redirect validation to be configured")
	}
	if client.Timeout == 0 {
		t.Error("expected a request timeout to be configured")
	}
}
