package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv applies TASKLIST_* overrides on top of base. Unset or
// unparseable values leave the field alone.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("TASKLIST_BACKEND"); ok {
		cfg.Storage.Backend = v
	}
	if v, ok := getEnvString("TASKLIST_DB_PATH"); ok {
		cfg.Storage.DBPath = v
	}
	if v, ok := getEnvString("TASKLIST_STATE_PATH"); ok {
		cfg.Storage.StatePath = v
	}
	if v, ok := getEnvString("TASKLIST_LOG_PATH"); ok {
		cfg.LogPath = v
	}
	if v, ok := getEnvString("TASKLIST_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnvBool("TASKLIST_DESKTOP_NOTIFICATIONS"); ok {
		cfg.Reminders.DesktopNotifications = v
	}
	if v, ok := getEnvInt("TASKLIST_TICK_INTERVAL_SECONDS"); ok && v > 0 {
		cfg.Reminders.TickIntervalSeconds = v
	}
	if v, ok := getEnvInt("TASKLIST_OVERDUE_COOLDOWN_MINUTES"); ok && v > 0 {
		cfg.Reminders.OverdueCooldownMinutes = v
	}
	if v, ok := getEnvInt("TASKLIST_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.Reminders.Buffer = v
	}
	if v, ok := getEnvString("TASKLIST_CATEGORIES"); ok {
		cfg.Categories = strings.Split(v, ",")
	}
	return cfg
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
