package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
)

// Config stores runtime configuration for the bot.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	DiscordToken string
	GuildID      string
	PollInterval time.Duration
	PollWorkers  int
	StatePath    string

	ChampionStandingsURL         string
	ChallengerStandingsURL       string
	ChampionStandingsChannelID   string
	ChallengerStandingsChannelID string

	BypassSchedulerPermissions bool
	DevUserIDs                 map[string]struct{}
	CommissionerRoles          []string
	GMRoles                    []string
	OrgGMRole                  string
	GMOrgMapPath               string
	GMOrgMap                   map[string]string

	LeagueTZ *time.Location

	StandingsTimeout               time.Duration
	StandingsCircuitEnabled        bool
	StandingsCircuitFailureCount   int
	StandingsCircuitOpenTimeout    time.Duration
	StandingsCircuitHalfOpenMaxReq int

	TeamCacheTTL          time.Duration
	ReminderSweepInterval time.Duration

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	BetterStackEnabled         bool
	BetterStackEndpoint        string
	BetterStackToken           string
	BetterStackTimeout         time.Duration
	BetterStackMinLevel        logging.Level
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	discordToken := strings.TrimSpace(getEnv("DISCORD_TOKEN", ""))
	if discordToken == "" {
		return Config{}, fmt.Errorf("DISCORD_TOKEN is required")
	}

	championURL := strings.TrimSpace(getEnv("STANDINGS_URL", ""))
	if championURL == "" {
		return Config{}, fmt.Errorf("STANDINGS_URL is required")
	}
	challengerURL := strings.TrimSpace(getEnv("CHALLENGER_STANDINGS_URL", ""))

	pollSeconds, err := getEnvAsInt("POLL_SECONDS", 180)
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_SECONDS: %w", err)
	}
	if pollSeconds < 30 {
		return Config{}, fmt.Errorf("POLL_SECONDS must be >= 30")
	}

	pollWorkers, err := getEnvAsInt("POLL_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse POLL_WORKERS: %w", err)
	}
	if pollWorkers < 1 {
		return Config{}, fmt.Errorf("POLL_WORKERS must be >= 1")
	}

	standingsTimeout, err := time.ParseDuration(getEnv("STANDINGS_TIMEOUT", "25s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_TIMEOUT: %w", err)
	}
	if standingsTimeout <= 0 {
		return Config{}, fmt.Errorf("STANDINGS_TIMEOUT must be > 0")
	}
	standingsCircuitEnabled, err := strconv.ParseBool(getEnv("STANDINGS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_CIRCUIT_ENABLED: %w", err)
	}
	standingsCircuitFailureCount, err := getEnvAsInt("STANDINGS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if standingsCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STANDINGS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	standingsCircuitOpenTimeout, err := time.ParseDuration(getEnv("STANDINGS_CIRCUIT_OPEN_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if standingsCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("STANDINGS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	standingsCircuitHalfOpenMaxReq, err := getEnvAsInt("STANDINGS_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse STANDINGS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if standingsCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STANDINGS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	teamCacheTTL, err := time.ParseDuration(getEnv("TEAM_CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse TEAM_CACHE_TTL: %w", err)
	}
	if teamCacheTTL <= 0 {
		return Config{}, fmt.Errorf("TEAM_CACHE_TTL must be > 0")
	}

	reminderSweepInterval, err := time.ParseDuration(getEnv("REMINDER_SWEEP_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REMINDER_SWEEP_INTERVAL: %w", err)
	}
	if reminderSweepInterval <= 0 {
		return Config{}, fmt.Errorf("REMINDER_SWEEP_INTERVAL must be > 0")
	}

	bypass, err := strconv.ParseBool(getEnv("BYPASS_SCHEDULER_PERMISSIONS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BYPASS_SCHEDULER_PERMISSIONS: %w", err)
	}

	leagueTZ, err := time.LoadLocation(strings.TrimSpace(getEnv("LEAGUE_TZ", "America/New_York")))
	if err != nil {
		leagueTZ = time.UTC
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel := parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	gmOrgMapPath := strings.TrimSpace(getEnv("GM_ORG_MAP_PATH", "gm_orgs.json"))

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "rlvs-discord-bot"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		DiscordToken: discordToken,
		GuildID:      parseSnowflake(getEnv("GUILD_ID", "")),
		PollInterval: time.Duration(pollSeconds) * time.Second,
		PollWorkers:  pollWorkers,
		StatePath:    getEnv("STATE_PATH", "state.json"),

		ChampionStandingsURL:         championURL,
		ChallengerStandingsURL:       challengerURL,
		ChampionStandingsChannelID:   parseSnowflake(getEnv("CHAMPION_STANDINGS_CHANNEL_ID", "")),
		ChallengerStandingsChannelID: parseSnowflake(getEnv("CHALLENGER_STANDINGS_CHANNEL_ID", "")),

		BypassSchedulerPermissions: bypass,
		DevUserIDs:                 parseSnowflakeSet(getEnv("DEV_USER_IDS", "")),
		CommissionerRoles:          splitCSVLower(getEnv("COMMISSIONER_ROLES", "Commissioner")),
		GMRoles:                    splitCSVLower(getEnv("GM_ROLES", "GM")),
		OrgGMRole:                  strings.ToLower(strings.TrimSpace(getEnv("ORG_GM_ROLE", "Org GM"))),
		GMOrgMapPath:               gmOrgMapPath,
		GMOrgMap:                   loadGMOrgMap(gmOrgMapPath),

		LeagueTZ: leagueTZ,

		StandingsTimeout:               standingsTimeout,
		StandingsCircuitEnabled:        standingsCircuitEnabled,
		StandingsCircuitFailureCount:   standingsCircuitFailureCount,
		StandingsCircuitOpenTimeout:    standingsCircuitOpenTimeout,
		StandingsCircuitHalfOpenMaxReq: standingsCircuitHalfOpenMaxReq,

		TeamCacheTTL:          teamCacheTTL,
		ReminderSweepInterval: reminderSweepInterval,

		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		BetterStackEnabled:         betterStackEnabled,
		BetterStackEndpoint:        betterStackEndpoint,
		BetterStackToken:           strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:         betterStackTimeout,
		BetterStackMinLevel:        betterStackMinLevel,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSVLower(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.ToLower(strings.TrimSpace(part))
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

// parseSnowflake accepts a Discord snowflake and returns it normalized.
// Placeholder values such as "standby" mean the channel is intentionally
// unassigned and collapse to the empty string.
func parseSnowflake(v string) string {
	value := strings.TrimSpace(v)
	if value == "" || strings.EqualFold(value, "standby") {
		return ""
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return ""
	}

	return value
}

func parseSnowflakeSet(v string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(v, ",") {
		id := parseSnowflake(part)
		if id == "" {
			continue
		}
		out[id] = struct{}{}
	}

	return out
}

// loadGMOrgMap reads the optional user-to-org assignment file. A missing or
// malformed file yields an empty map; scheduling then falls back to role
// checks alone.
func loadGMOrgMap(path string) map[string]string {
	out := make(map[string]string)
	if path == "" {
		return out
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return out
	}

	var parsed map[string]string
	if err := sonic.Unmarshal(raw, &parsed); err != nil {
		return out
	}

	for uid, org := range parsed {
		id := parseSnowflake(uid)
		org = strings.TrimSpace(org)
		if id == "" || org == "" {
			continue
		}
		out[id] = org
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
