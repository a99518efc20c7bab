package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
// 起動時に1回だけ読み、以降はDIで渡す（リクエスト中にos.Getenvしない）
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	JWTAccessSecret  string        // access token署名シークレット
	JWTRefreshSecret string        // refresh token署名シークレット
	AccessTokenTTL   time.Duration // access tokenの有効期限（default 1h）
	RefreshTokenTTL  time.Duration // refresh tokenの有効期限（default 7d）

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）
}

// 本番環境かどうか
func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// Loadは環境変数から設定を読む
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	accessTTL, err := lifetimeEnv("JWT_EXPIRES_IN", time.Hour)
	if err != nil {
		return Config{}, err
	}
	refreshTTL, err := lifetimeEnv("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTAccessSecret:  os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:   accessTTL,
		RefreshTokenTTL:  refreshTTL,

		GoEnv: os.Getenv("GO_ENV"),
		FEURL: os.Getenv("FE_URL"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	//シークレット欠落はデプロイミス。ここで落とす（リクエスト時ではなく）
	if cfg.JWTAccessSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

// "1h" / "7d" / "30m" / "3600"（秒）をtime.Durationに変換
func lifetimeEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	return parseLifetime(v)
}

func parseLifetime(v string) (time.Duration, error) {
	var unit time.Duration
	num := v

	switch {
	case strings.HasSuffix(v, "h"):
		unit = time.Hour
		num = strings.TrimSuffix(v, "h")
	case strings.HasSuffix(v, "d"):
		unit = 24 * time.Hour
		num = strings.TrimSuffix(v, "d")
	case strings.HasSuffix(v, "m"):
		unit = time.Minute
		num = strings.TrimSuffix(v, "m")
	}

	n, err := strconv.Atoi(num)
	if err != nil {
		//解釈できない値は設定ミスとして起動時に落とす
		return 0, fmt.Errorf("cannot parse lifetime: %s", v)
	}
	if n <= 0 {
		return 0, fmt.Errorf("lifetime must be positive: %s", v)
	}

	//サフィックスなしは秒
	if unit == 0 {
		return time.Duration(n) * time.Second, nil
	}
	return time.Duration(n) * unit, nil
}
