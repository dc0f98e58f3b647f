package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var serverFlags = []string{"-a", "-g", "-d", "-k"}

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"server flags survive a config flag", []string{"-a", ":8080", "-c", "g.yaml", "-g", ":9090"}, serverFlags, []string{"-a", ":8080", "-g", ":9090"}},
		{"equals form", []string{"-d=postgres://db/gk", "-x=1"}, serverFlags, []string{"-d=postgres://db/gk"}},
		{"trailing flag without value", []string{"-k"}, serverFlags, []string{"-k"}},
		{"next token is a flag, not a value", []string{"-a", "-g", ":9090"}, serverFlags, []string{"-a", "-g", ":9090"}},
		{"dash-prefixed value in equals form", []string{"--config=--odd.json"}, []string{"--config"}, []string{"--config=--odd.json"}},
		{"positional arguments dropped", []string{"serve", "-a", ":1", "now"}, serverFlags, []string{"-a", ":1"}},
		{"nothing allowed", []string{"-a", ":1"}, nil, []string{}},
		{"nil args", nil, serverFlags, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterArgs(tt.args, tt.allowed)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterArgs_DoesNotMutateInput(t *testing.T) {
	args := []string{"-a", ":8080", "-z", "1"}
	_ = FilterArgs(args, serverFlags)
	assert.Equal(t, []string{"-a", ":8080", "-z", "1"}, args)
}

func TestConfigFileFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/gatekeeper.yaml"}, "/etc/gatekeeper.yaml"},
		{"long", []string{"-config", "/etc/gatekeeper.json"}, "/etc/gatekeeper.json"},
		{"double dash equals", []string{"--config=/tmp/g.yml", "-a", ":8080"}, "/tmp/g.yml"},
		{"absent", []string{"-a", ":8080", "-k", "8"}, ""},
		{"last wins", []string{"-c", "one.json", "-config", "two.json"}, "two.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFileFlag(tt.args))
		})
	}
}
