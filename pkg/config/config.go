package config

import (
	"os"
	"strings"
)

// Config holds all application configuration values
type Config struct {
	Port             string
	CRMWebhookURL    string
	CRMAPIKey        string
	WidgetBundlePath string
	AllowedOrigins   []string
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bundlePath := os.Getenv("WIDGET_BUNDLE_PATH")
	if bundlePath == "" {
		bundlePath = "./static/widget.js"
	}

	var origins []string
	if raw := os.Getenv("ALLOWED_ORIGINS"); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	return &Config{
		Port:             port,
		CRMWebhookURL:    os.Getenv("CRM_WEBHOOK_URL"),
		CRMAPIKey:        os.Getenv("CRM_API_KEY"),
		WidgetBundlePath: bundlePath,
		AllowedOrigins:   origins,
	}
}
