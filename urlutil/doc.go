// Package urlutil validates URLs.
//
// Validate accepts absolute http:// and https:// URLs with a host.
// ValidateHTTPSOnly additionally requires https:// except for localhost.
// ValidateRegistry is the rule for npm registry URLs:
//
//	if err := urlutil.ValidateRegistry(cfg.Registry); err != nil {
//		return fmt.Errorf("invalid registry: %w", err)
//	}
package urlutil
