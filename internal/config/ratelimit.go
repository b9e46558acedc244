package config

import "os"

// RateLimitRule describes one sliding-window limit: at most Max requests
// per identifier within the trailing WindowSeconds.  Prefix namespaces the
// redis key so limits are independent per route.
type RateLimitRule struct {
    WindowSeconds int
    Max           int
    Prefix        string
}

// RateLimitConfig enumerates the per-route rules for the abuse-prone
// endpoints.  Routes without a rule are not limited.
type RateLimitConfig struct {
    Enabled  bool
    Login    RateLimitRule
    Register RateLimitRule
    OTPSend  RateLimitRule
    Recovery RateLimitRule
}

// LoadRateLimitConfig reads the limiter tunables from the environment with
// conservative defaults: login 5/min, register 3/min, OTP send 3/min,
// recovery request 3/min.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled: envBool("RATE_LIMIT_ENABLED", true),
        Login: RateLimitRule{
            WindowSeconds: envInt("RATE_LIMIT_LOGIN_WINDOW_SEC", 60),
            Max:           envInt("RATE_LIMIT_LOGIN_MAX", 5),
            Prefix:        "login",
        },
        Register: RateLimitRule{
            WindowSeconds: envInt("RATE_LIMIT_REGISTER_WINDOW_SEC", 60),
            Max:           envInt("RATE_LIMIT_REGISTER_MAX", 3),
            Prefix:        "register",
        },
        OTPSend: RateLimitRule{
            WindowSeconds: envInt("RATE_LIMIT_OTP_WINDOW_SEC", 60),
            Max:           envInt("RATE_LIMIT_OTP_MAX", 3),
            Prefix:        "otp",
        },
        Recovery: RateLimitRule{
            WindowSeconds: envInt("RATE_LIMIT_RECOVERY_WINDOW_SEC", 60),
            Max:           envInt("RATE_LIMIT_RECOVERY_MAX", 3),
            Prefix:        "recovery",
        },
    }
}

func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" {
        return d
    }
    switch v {
    case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
        return true
    case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
        return false
    }
    return d
}
