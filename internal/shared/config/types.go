package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql or sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"` // sqlite file path
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // minutes
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	BaseURL      string `mapstructure:"base_url"`
}

// WebAuthnConfig configures the relying party for passkey ceremonies.
type WebAuthnConfig struct {
	RPID      string   `mapstructure:"rp_id"`
	RPName    string   `mapstructure:"rp_name"`
	RPOrigins []string `mapstructure:"rp_origins"`
	Timeout   int      `mapstructure:"timeout"` // milliseconds
}

func (w *WebAuthnConfig) IsConfigured() bool {
	return w.RPID != "" && w.RPName != "" && len(w.RPOrigins) > 0
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
	RefreshExpDays   int    `mapstructure:"refresh_exp_days"`
}

// AuthConfig groups the token lifecycle knobs for the auth core.
type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`

	// VerificationTokenExpMinutes is the authoritative expiry carried on
	// each verification token. The Redis TTL is a coarser backstop.
	VerificationTokenExpMinutes int `mapstructure:"verification_token_exp_minutes"`
	// VerificationResendCooldownSeconds gates how often a verification
	// email may be re-issued per user.
	VerificationResendCooldownSeconds int `mapstructure:"verification_resend_cooldown_seconds"`
	// ChallengeTTLSeconds bounds how long a begun WebAuthn ceremony can
	// be completed.
	ChallengeTTLSeconds int `mapstructure:"challenge_ttl_seconds"`
}

func (a *AuthConfig) VerificationTokenExpiry() time.Duration {
	return time.Duration(a.VerificationTokenExpMinutes) * time.Minute
}

func (a *AuthConfig) VerificationResendCooldown() time.Duration {
	return time.Duration(a.VerificationResendCooldownSeconds) * time.Second
}

func (a *AuthConfig) ChallengeTTL() time.Duration {
	return time.Duration(a.ChallengeTTLSeconds) * time.Second
}
