package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	url := DriverURL("abc123")

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"DriverURL", url, "digitalocean:abc123"},
		{"DriverURL empty credential", DriverURL(""), "digitalocean:"},
		{"KeyName", KeyName("/home/me/.ssh/id_rsa"), "id_rsa"},
		{"KeyName relative", KeyName("deploy"), "deploy"},
		{"DefaultKeyPath", DefaultKeyPath("/var/keys"), "/var/keys/machine_default"},
		{"CreateMachine", CreateMachine("web-1", url), "create machine web-1 on digitalocean:abc123"},
		{"DestroyMachine", DestroyMachine("web-1", "42", url), "destroy machine web-1 (42 at digitalocean:abc123)"},
		{"GenerateKey", GenerateKey("/k/id"), "generate private key /k/id"},
		{"CreateKey", CreateKey("id_rsa", url), "create key pair id_rsa on digitalocean:abc123"},
		{"ReplaceKey", ReplaceKey("id_rsa", url), "update key pair id_rsa on digitalocean:abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}
