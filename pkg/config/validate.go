package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate enforces the struct invariants declared via `validate` tags
// across the whole configuration, plus the cross-field rules that
// validator tags alone cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return validateClient(&cfg.Client)
}

// validateClient enforces the Connection Request's cross-field rules.
// A misconfiguration here is a Configuration error per spec.md §7: it
// never reaches the wire.
func validateClient(cfg *ClientConnectionConfig) error {
	// The actual conflict is a password alongside IAM: buildConnectionRequest
	// legitimately pairs IAM with a bare Credentials.Username (the identity
	// IAM authenticates as), so that combination is not rejected here.
	if cfg.Iam != nil && cfg.Iam.Enabled && cfg.Credentials != nil && cfg.Credentials.Password != "" {
		return fmt.Errorf("client: credentials password and IAM authentication are mutually exclusive")
	}

	if cfg.ClusterModeEnabled && cfg.DatabaseID != 0 {
		return fmt.Errorf("client: database_id is only valid in standalone mode")
	}

	return nil
}
