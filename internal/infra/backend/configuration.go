package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// GeneralConfig is the site configuration document. Fields the service does
// not know about pass through untouched.
type GeneralConfig map[string]any

const adminEmailKey = "emailAdministracion"

func (g GeneralConfig) AdminEmail() string {
	s, _ := g[adminEmailKey].(string)
	return strings.TrimSpace(s)
}

func (c *Client) GeneralConfig(ctx context.Context) (GeneralConfig, error) {
	data, err := c.do(ctx, http.MethodGet, "/configuration/general", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeGeneralConfig(data)
}

func (c *Client) UpdateGeneralConfig(ctx context.Context, cfg GeneralConfig) (GeneralConfig, error) {
	data, err := c.do(ctx, http.MethodPut, "/configuration/general", nil, cfg)
	if err != nil {
		return nil, err
	}
	return decodeGeneralConfig(data)
}

// AdminEmail is the address that receives new-budget alerts.
func (c *Client) AdminEmail(ctx context.Context) (string, error) {
	cfg, err := c.GeneralConfig(ctx)
	if err != nil {
		return "", err
	}
	return cfg.AdminEmail(), nil
}

func decodeGeneralConfig(data json.RawMessage) (GeneralConfig, error) {
	cfg := GeneralConfig{}
	if isNull(data) {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	return cfg, nil
}
