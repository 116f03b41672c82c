package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the
// extension scheduler service.
type Config struct {
	HTTPPort        int
	SQLiteDSN       string
	BridgeURL       string
	BridgeTimeout   time.Duration
	APIToken        string
	BackupDir       string
	VerifiedListURL string
	VerificationTTL time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values, collecting every problem before reporting.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:extension-scheduler.db",
		BridgeTimeout:   10 * time.Second,
		VerificationTTL: time.Hour,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("EXTSCHED_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "EXTSCHED_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("EXTSCHED_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if bridgeURL := strings.TrimSpace(os.Getenv("EXTSCHED_BRIDGE_URL")); bridgeURL == "" {
		missing = append(missing, "EXTSCHED_BRIDGE_URL")
	} else {
		cfg.BridgeURL = bridgeURL
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("EXTSCHED_BRIDGE_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "EXTSCHED_BRIDGE_TIMEOUT")
		} else {
			cfg.BridgeTimeout = timeout
		}
	}

	// Either a plaintext token or a pre-computed argon2id hash. Empty
	// means the API runs unauthenticated, the single-user local setup.
	cfg.APIToken = strings.TrimSpace(os.Getenv("EXTSCHED_API_TOKEN"))

	cfg.BackupDir = strings.TrimSpace(os.Getenv("EXTSCHED_BACKUP_DIR"))

	cfg.VerifiedListURL = strings.TrimSpace(os.Getenv("EXTSCHED_VERIFIED_URL"))

	if ttlValue := strings.TrimSpace(os.Getenv("EXTSCHED_VERIFICATION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "EXTSCHED_VERIFICATION_TTL")
		} else {
			cfg.VerificationTTL = ttl
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
