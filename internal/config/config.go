package config // package config loads application configuration from environment variables

import (
    "log"     // log reports configuration errors and halts execution
    "os"      // os provides access to environment variables and key files
    "strconv" // strconv converts strings to other types
    "strings" // strings normalizes provider names
    "time"    // time.Duration for token and code lifetimes

    "github.com/joho/godotenv" // optional .env loading for local development
)

// Config holds all runtime configuration values.  Each field corresponds to
// one or more environment variables.  Everything is resolved once at
// startup and passed to components explicitly; nothing reads the
// environment after Load returns.
type Config struct {
    Env  string // application environment (e.g. "dev", "prod")
    Port string // HTTP port to listen on

    DBUser string // database username
    DBPass string // database password (optional)
    DBHost string // database host address
    DBPort string // database port number
    DBName string // database name

    JWTAlg        string        // signing algorithm: HS256 or RS256
    JWTSecret     string        // shared secret (HS256 only)
    JWTPrivateKey string        // PEM private key (RS256 only)
    JWTPublicKey  string        // PEM public key (RS256, optional — derived from private when empty)
    AccessTTL     time.Duration // access token lifetime (default 15m)
    RefreshTTL    time.Duration // refresh token lifetime (default 30d)

    BcryptCost int // bcrypt cost for password hashing

    OTPTTL         time.Duration // one-time code lifetime (default 5m)
    OTPMaxAttempts int           // failed attempts before a code stops being accepted
    RecoveryTTL    time.Duration // link-style recovery token lifetime (default 30m)

    EmailProvider string // "smtp" or "log"
    SMSProvider   string // "twilio" or "log"
    SMTPHost      string
    SMTPPort      int
    SMTPUser      string
    SMTPPass      string
    SMTPFrom      string
    TwilioSID     string
    TwilioToken   string
    TwilioFrom    string

    AMQPURL string // RabbitMQ URL for activity events (empty disables publishing)
}

// Load reads configuration from the environment, consulting a .env file
// when one exists.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message; tunables fall
// back to documented defaults.
func Load() Config {
    _ = godotenv.Load() // absent .env is fine; real env vars win anyway

    cfg := Config{
        Env:    envStr("APP_ENV", "dev"),
        Port:   envStr("APP_PORT", "8001"),
        DBUser: must("DB_USER"),
        DBPass: os.Getenv("DB_PASS"),
        DBHost: must("DB_HOST"),
        DBPort: must("DB_PORT"),
        DBName: must("DB_NAME"),

        JWTAlg:        strings.ToUpper(envStr("JWT_ALG", "HS256")),
        JWTSecret:     os.Getenv("JWT_SECRET"),
        JWTPrivateKey: keyFromEnv("JWT_PRIVATE_KEY"),
        JWTPublicKey:  keyFromEnv("JWT_PUBLIC_KEY"),
        AccessTTL:     envTTL("ACCESS_TTL", 15*time.Minute),
        RefreshTTL:    envTTL("REFRESH_TTL", 30*24*time.Hour),

        BcryptCost: envInt("BCRYPT_COST", 12),

        OTPTTL:         envTTL("OTP_TTL", 5*time.Minute),
        OTPMaxAttempts: envInt("OTP_MAX_ATTEMPTS", 5),
        RecoveryTTL:    envTTL("RECOVERY_TOKEN_TTL", 30*time.Minute),

        EmailProvider: strings.ToLower(envStr("PROVIDER_EMAIL", "log")),
        SMSProvider:   strings.ToLower(envStr("PROVIDER_SMS", "log")),
        SMTPHost:      os.Getenv("SMTP_HOST"),
        SMTPPort:      envInt("SMTP_PORT", 587),
        SMTPUser:      os.Getenv("SMTP_USER"),
        SMTPPass:      os.Getenv("SMTP_PASS"),
        SMTPFrom:      os.Getenv("SMTP_FROM"),
        TwilioSID:     os.Getenv("TWILIO_SID"),
        TwilioToken:   os.Getenv("TWILIO_AUTH"),
        TwilioFrom:    os.Getenv("TWILIO_FROM"),

        AMQPURL: os.Getenv("AMQP_URL"),
    }

    // Key material is validated here rather than at first use so a
    // misconfigured process refuses to start instead of failing on the
    // first login.
    switch cfg.JWTAlg {
    case "HS256":
        if cfg.JWTSecret == "" {
            log.Fatal("JWT_ALG=HS256 requires JWT_SECRET")
        }
    case "RS256":
        if cfg.JWTPrivateKey == "" {
            log.Fatal("JWT_ALG=RS256 requires JWT_PRIVATE_KEY or JWT_PRIVATE_KEY_PATH")
        }
    default:
        log.Fatalf("unsupported JWT_ALG: %s", cfg.JWTAlg)
    }

    return cfg
}

// keyFromEnv resolves PEM key material either inline (NAME) or from a file
// (NAME_PATH).  An unreadable path is fatal; both unset is fine and yields
// an empty string.
func keyFromEnv(name string) string {
    if v := os.Getenv(name); v != "" {
        return v
    }
    path := os.Getenv(name + "_PATH")
    if path == "" {
        return ""
    }
    b, err := os.ReadFile(path)
    if err != nil {
        log.Fatalf("cannot read %s_PATH=%s: %v", name, path, err)
    }
    return string(b)
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// ParseTTL converts lifetimes written as "45s", "15m", "12h" or "30d" into
// a time.Duration.  time.ParseDuration has no day unit, which refresh-token
// lifetimes need, so the suffix is handled here.  Zero is returned for
// anything unparseable.
func ParseTTL(s string) time.Duration {
    s = strings.TrimSpace(s)
    if len(s) < 2 {
        return 0
    }
    n, err := strconv.Atoi(s[:len(s)-1])
    if err != nil || n < 0 {
        return 0
    }
    switch s[len(s)-1] {
    case 's':
        return time.Duration(n) * time.Second
    case 'm':
        return time.Duration(n) * time.Minute
    case 'h':
        return time.Duration(n) * time.Hour
    case 'd':
        return time.Duration(n) * 24 * time.Hour
    }
    return 0
}

func envTTL(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return def
    }
    if d := ParseTTL(v); d > 0 {
        return d
    }
    return def
}

func envStr(k, d string) string {
    if v := os.Getenv(k); v != "" {
        return v
    }
    return d
}

func envInt(k string, d int) int {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}
