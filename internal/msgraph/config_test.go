package msgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvAPIEndpoint, "http://localhost:9999/v1.0/")
	t.Setenv(EnvAuthorityHost, "")
	t.Setenv(EnvAccountID, "tenant")
	t.Setenv(EnvClientID, "app")
	t.Setenv(EnvClientSecret, "secret")

	cfg := ConfigFromEnv()
	assert.NoError(t, cfg.Validate())

	cfg = cfg.withDefaults()
	assert.Equal(t, "http://localhost:9999/v1.0", cfg.Endpoint)
	assert.Equal(t, DefaultAuthorityHost, cfg.AuthorityHost)
	assert.Equal(t, []string{DefaultScope}, cfg.Scopes)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{AccountID: "t", ClientID: "c", ClientSecret: "s"}, false},
		{"no tenant", Config{ClientID: "c", ClientSecret: "s"}, true},
		{"no client id", Config{AccountID: "t", ClientSecret: "s"}, true},
		{"no secret", Config{AccountID: "t", ClientID: "c"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingCredentials)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_TokenURL(t *testing.T) {
	cfg := Config{AccountID: "contoso.onmicrosoft.com"}
	assert.Equal(t, "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/token", cfg.TokenURL())

	cfg.AuthorityHost = "http://127.0.0.1:8080/"
	assert.Equal(t, "http://127.0.0.1:8080/contoso.onmicrosoft.com/oauth2/v2.0/token", cfg.TokenURL())
}
