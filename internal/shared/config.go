package shared

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	CORSOrigins []string
	ChatRPS     float64
	ChatBurst   int
	TrustProxy  bool

	SecretKey     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string

	OpenAIKey   string
	OpenAIModel string
	OpenAIBase  string

	SendGridKey        string
	SendGridTemplateID string
	SendGridFrom       string
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	SMTPFrom           string
	SalesEmail         string

	WPAPIURL      string
	WPUser        string
	WPAppPassword string
	ETLWorkers    int
}

// Load reads the environment, after merging a .env file when one exists.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
		return def
	}
	atob := func(k string, def bool) bool {
		if b, err := strconv.ParseBool(os.Getenv(k)); err == nil {
			return b
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", env("ENV", "prod")),
		HTTPAddr:    env("HTTP_ADDR", ":8000"),
		MetricsAddr: env("METRICS_ADDR", ""),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", ""),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),
		CacheTTL:    time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,

		CORSOrigins: splitList(env("BACKEND_CORS_ORIGINS", "http://localhost:3000,http://localhost:5173,https://sathomson.com.au")),
		ChatRPS:     atof("CHAT_RPS", 2),
		ChatBurst:   atoi("CHAT_BURST", 5),
		TrustProxy:  atob("TRUST_PROXY", false),

		SecretKey:     env("SECRET_KEY", env("JWT_SECRET", "")),
		TokenTTL:      time.Duration(atoi("ACCESS_TOKEN_EXPIRE_MINUTES", 60)) * time.Minute,
		AdminEmail:    env("ADMIN_EMAIL", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),

		OpenAIKey:   env("OPENAI_API_KEY", ""),
		OpenAIModel: env("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIBase:  env("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		SendGridKey:        env("SENDGRID_API_KEY", ""),
		SendGridTemplateID: env("SENDGRID_WELCOME_TEMPLATE_ID", ""),
		SendGridFrom:       env("SENDGRID_FROM_EMAIL", "sales@sathomson.com.au"),
		SMTPHost:           env("SMTP_HOST", ""),
		SMTPPort:           atoi("SMTP_PORT", 587),
		SMTPUser:           env("SMTP_USER", ""),
		SMTPPass:           env("SMTP_PASS", ""),
		SalesEmail:         env("SALES_EMAIL", "sales@sathomson.com.au"),

		WPAPIURL:      env("WP_API_URL", ""),
		WPUser:        env("WP_USER", ""),
		WPAppPassword: env("WP_APP_PASSWORD", ""),
		ETLWorkers:    atoi("ETL_WORKERS", 4),
	}
	c.SMTPFrom = env("SMTP_FROM", env("SMTP_USER", "no-reply@sathomson.com.au"))
	if c.MySQLDSN == "" {
		c.MySQLDSN = dsnFromParts()
	}

	if c.SecretKey == "" {
		log.Warn().Msg("SECRET_KEY is empty; tokens will not survive a restart")
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty; chat falls back to rule replies")
	}
	if c.SendGridKey == "" && c.SMTPHost == "" {
		log.Warn().Msg("no SENDGRID_API_KEY or SMTP_HOST; emails are logged only")
	}
	return c
}

func (c Config) IsDev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }

// dsnFromParts assembles a DSN from DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME.
func dsnFromParts() string {
	mc := mysql.NewConfig()
	mc.User = env("DB_USER", "root")
	mc.Passwd = env("DB_PASSWORD", "root")
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(env("DB_HOST", "localhost"), env("DB_PORT", "3306"))
	mc.DBName = env("DB_NAME", "satn")
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
