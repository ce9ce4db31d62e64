package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the harvest snapshot service.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
	// PublicURL is the address the capture script posts back to.
	PublicURL string `yaml:"public_url"`

	// Data directories
	RawDir        string `yaml:"raw_dir"`
	ParsedDir     string `yaml:"parsed_dir"`
	QuarantineDir string `yaml:"quarantine_dir"`
	MapDir        string `yaml:"map_dir"`
	OverviewDir   string `yaml:"overview_dir"`

	// Reference resource bundle (scene geometry, textures, rarity tables)
	BundleDir string `yaml:"bundle_dir"`

	// Rendering
	OnlyRare         bool   `yaml:"only_rare"`
	OverviewMaxWidth int    `yaml:"overview_max_width"`
	SaveFormat       string `yaml:"save_format"` // "png" or "jpeg"
	JPEGQuality      int    `yaml:"jpeg_quality"`

	// GameServerDomains maps API domains to short region codes.
	GameServerDomains map[string]string `yaml:"game_server_domains"`

	// Keysets maps region codes to decryption key material.
	Keysets map[string]Keyset `yaml:"keysets"`

	// Database (optional snapshot record store)
	Database DatabaseConfig `yaml:"database"`
}

// Keyset is the key material for one game server region.
// Either key_hex/iv_hex or passphrase/salt must be set.
type Keyset struct {
	KeyHex     string `yaml:"key_hex"`
	IVHex      string `yaml:"iv_hex"`
	Passphrase string `yaml:"passphrase"`
	Salt       string `yaml:"salt"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
// Enabled=false disables the snapshot record store entirely.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:      "0.0.0.0",
		Port:             6666,
		PublicURL:        "https://127.0.0.1:6666",
		RawDir:           "dynamic/mysekai/raw",
		ParsedDir:        "dynamic/mysekai/parsed",
		QuarantineDir:    "dynamic/mysekai/parse_fail",
		MapDir:           "dynamic/mysekai/draw/map",
		OverviewDir:      "dynamic/mysekai/draw/overview",
		BundleDir:        "bundle",
		OnlyRare:         false,
		OverviewMaxWidth: 1000,
		SaveFormat:       "png",
		JPEGQuality:      90,
		GameServerDomains: map[string]string{
			"mkcn-prod-public-60001-1.dailygn.com":          "cn",
			"mkcn-prod-public-60001-2.dailygn.com":          "cn",
			"production-game-api.sekai.colorfulpalette.org": "jp",
			"mk-zian-obt-cdn.bytedgame.com":                 "tw",
			"mkkorea-obt-prod01-cdn.bytedgame.com":          "kr",
			"n-production-game-api.sekai-en.com":            "en",
		},
		Keysets: map[string]Keyset{},
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "solabot",
			Password: "solabot",
			DBName:   "solabot",
			SSLMode:  "disable",
		},
	}
}

// LoadServer loads service config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
