package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "DUTYCAL_"

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Timezone string   `koanf:"timezone"`
	Frontend Frontend `koanf:"frontend"`
	Feed     Feed     `koanf:"feed"`
	Sessions Sessions `koanf:"sessions"`
	Database Database `koanf:"db"`
}

type Frontend struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
}

type FeedSource string

const (
	FeedSourceFile     FeedSource = "file"
	FeedSourceHTTP     FeedSource = "http"
	FeedSourcePostgres FeedSource = "postgres"
)

type Feed struct {
	Source  FeedSource    `koanf:"source"`
	Path    string        `koanf:"path"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	OAuth   OAuth         `koanf:"oauth"`
}

// OAuth holds client credentials for a protected feed URL. Leave ClientId empty
// for an unauthenticated feed.
type OAuth struct {
	TokenURL     string   `koanf:"tokenurl"`
	ClientId     string   `koanf:"clientid"`
	ClientSecret string   `koanf:"clientsecret"`
	Scopes       []string `koanf:"scopes"`
}

// Sessions bounds the per-viewer calendar state kept in memory.
type Sessions struct {
	Max         int           `koanf:"max"`
	IdleTimeout time.Duration `koanf:"idletimeout"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

func Defaults() Application {
	return Application{
		Host:     "http://localhost:8080",
		Port:     8080,
		Timezone: "Local",
		Frontend: Frontend{
			Enabled: false,
			Dir:     "frontend",
		},
		Feed: Feed{
			Source:  FeedSourceFile,
			Path:    "./data/schedule.json",
			Timeout: 10 * time.Second,
		},
		Sessions: Sessions{
			Max:         10000,
			IdleTimeout: 30 * time.Minute,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "dutycal",
			Name:   "dutycal",
			Schema: "dutycal",
		},
	}
}

// Load layers the defaults, the YAML file at path (optional) and DUTYCAL_*
// environment variables, later sources winning.
func Load(path string) (Application, error) {
	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config defaults: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			// DUTYCAL_FEED_OAUTH_CLIENTID -> feed.oauth.clientid
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Location resolves the configured timezone, falling back to the local zone.
func (a Application) Location() *time.Location {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %q, using local time: %v", a.Timezone, err)
		return time.Local
	}
	return loc
}
