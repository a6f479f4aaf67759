package config

import (
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/kickboxbd/kickbox-backend/internal/auth"
)

// Config is the process configuration. Values come from the environment
// (optionally seeded by a .env file) and an optional config.yaml.
type Config struct {
	Port     string `env:"PORT" yaml:"port" default:"5000"`
	GinMode  string `env:"GIN_MODE" yaml:"gin_mode" default:"release"`
	LogLevel string `env:"LOG_LEVEL" yaml:"log_level" default:"info"`

	MongoURI           string `env:"MONGO_URI" yaml:"mongo_uri"`
	DBUser             string `env:"DB_USER" yaml:"db_user"`
	DBPass             string `env:"DB_PASS" yaml:"db_pass"`
	DBHost             string `env:"DB_HOST" yaml:"db_host"`
	DBName             string `env:"DB_NAME" yaml:"db_name" default:"kickboxbd"`
	// The original deployment kept products in a collection named "shoes";
	// set PRODUCTS_COLLECTION=shoes to serve existing data.
	ProductsCollection string `env:"PRODUCTS_COLLECTION" yaml:"products_collection" default:"products"`
	OrdersCollection   string `env:"ORDERS_COLLECTION" yaml:"orders_collection" default:"orders"`

	JWTSecret   string `env:"JWT_SECRET" yaml:"jwt_secret"`
	JWTIssuer   string `env:"JWT_ISSUER" yaml:"jwt_issuer"`
	JWTAudience string `env:"JWT_AUDIENCE" yaml:"jwt_audience"`

	// Provider issued tokens. FIREBASE_PROJECT_ID alone selects Google's
	// key set, issuer and audience for that project; JWKS_URL points at any
	// other provider. Either one takes precedence over JWT_SECRET.
	JWKSURL           string `env:"JWKS_URL" yaml:"jwks_url"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID" yaml:"firebase_project_id"`

	SMTPHost     string `env:"SMTP_HOST" yaml:"smtp_host" default:"smtp.gmail.com"`
	SMTPPort     int    `env:"SMTP_PORT" yaml:"smtp_port" default:"587"`
	MailUser     string `env:"KICK_EMAIL" yaml:"mail_user"`
	MailPassword string `env:"KICK_EMAIL_PASS" yaml:"mail_password"`
	MailFromName string `env:"MAIL_FROM_NAME" yaml:"mail_from_name" default:"KickBox BD"`

	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" yaml:"store_timeout" default:"5s"`
	AuthTimeout     time.Duration `env:"AUTH_TIMEOUT" yaml:"auth_timeout" default:"5s"`
	MailTimeout     time.Duration `env:"MAIL_TIMEOUT" yaml:"mail_timeout" default:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout" default:"15s"`

	CORSOrigins []string `env:"CORS_ORIGINS" yaml:"cors_origins" default:"*"`
}

// Load reads .env (if present), then the environment and config.yaml.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	return load([]string{"config.yaml"})
}

func load(files []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags:          true,
		AllowUnknownFields: true,
		Files:              files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	c.MongoURI = strings.TrimSpace(c.MongoURI)
	if c.MongoURI == "" {
		uri, err := buildMongoURI(c.DBUser, c.DBPass, c.DBHost)
		if err != nil {
			return err
		}
		c.MongoURI = uri
	}
	if c.FirebaseProjectID = strings.TrimSpace(c.FirebaseProjectID); c.FirebaseProjectID != "" {
		if c.JWKSURL == "" {
			c.JWKSURL = auth.FirebaseJWKSURL
		}
		if c.JWTIssuer == "" {
			c.JWTIssuer = auth.FirebaseIssuerPrefix + c.FirebaseProjectID
		}
		if c.JWTAudience == "" {
			c.JWTAudience = c.FirebaseProjectID
		}
	}
	if strings.TrimSpace(c.JWTSecret) == "" && strings.TrimSpace(c.JWKSURL) == "" {
		return errors.New("JWT_SECRET, JWKS_URL or FIREBASE_PROJECT_ID is required")
	}
	if c.StoreTimeout <= 0 || c.AuthTimeout <= 0 || c.MailTimeout <= 0 {
		return errors.New("collaborator timeouts must be positive")
	}
	return nil
}

// UsesJWKS reports whether tokens are checked against a published key set.
func (c *Config) UsesJWKS() bool {
	return strings.TrimSpace(c.JWKSURL) != ""
}

// MailConfigured reports whether SMTP credentials are present.
func (c *Config) MailConfigured() bool {
	return c.MailUser != "" && c.MailPassword != ""
}

func buildMongoURI(user, pass, host string) (string, error) {
	user, pass, host = strings.TrimSpace(user), strings.TrimSpace(pass), strings.TrimSpace(host)
	if user == "" || pass == "" || host == "" {
		return "", errors.New("MONGO_URI or DB_USER, DB_PASS and DB_HOST are required")
	}
	u := url.URL{
		Scheme:   "mongodb+srv",
		User:     url.UserPassword(user, pass),
		Host:     host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	return u.String(), nil
}
