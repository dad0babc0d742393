package vault

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// MountPath is the KV v2 prefix holding one secret per provider.
const MountPath = "secret/data/jarvis"

type SecretManager struct {
	client *api.Client
	log    *zap.Logger
}

func NewSecretManager(address, token string, log *zap.Logger) (*SecretManager, error) {
	config := api.DefaultConfig()
	if address != "" {
		config.Address = address
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("vault: new client: %w", err)
	}

	if token != "" {
		client.SetToken(token)
	}

	return &SecretManager{client: client, log: log}, nil
}

// GetAPIKey reads secret/data/jarvis/<name>. The "api_key" field is preferred,
// then "value" and "url". A missing secret yields an empty key.
func (sm *SecretManager) GetAPIKey(ctx context.Context, name string) (string, error) {
	secret, err := sm.client.Logical().ReadWithContext(ctx, MountPath+"/"+name)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", name, err)
	}
	if secret == nil || secret.Data == nil {
		sm.log.Debug("Secret not found in vault", zap.String("name", name))
		return "", nil
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("vault: secret %s is not a kv v2 entry", name)
	}

	for _, field := range []string{"api_key", "value", "url"} {
		if value, ok := data[field].(string); ok && value != "" {
			return value, nil
		}
	}
	return "", nil
}
