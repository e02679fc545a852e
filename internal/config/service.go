package config

type ServiceConfig struct {
	Name                string        `yaml:"name"`
	Environment         string        `yaml:"environment"`
	Version             string        `yaml:"version"`
	ClientURL           string        `yaml:"client_url"`
	StripeSecretKey     string        `yaml:"stripe_secret_key"`
	StripeWebhookSecret string        `yaml:"stripe_webhook_secret"`
	TokenEncryptionKey  string        `yaml:"token_encryption_key"`
	YouTube             YouTubeConfig `yaml:"youtube"`
}

type YouTubeConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}
