package update

import (
	"os"
	"strconv"
	"strings"
)

type RuntimeConfig struct {
	DBPath         string
	AnimFrameMS    int
	AnimDurationMS int
	FrameBuffer    int
	StartHidden    bool
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		AnimFrameMS:    33,
		AnimDurationMS: 160,
		FrameBuffer:    64,
		StartHidden:    false,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TRAYPOP_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v, ok := getEnvInt("TRAYPOP_ANIM_FRAME_MS"); ok && v > 0 {
		cfg.AnimFrameMS = v
	}
	if v, ok := getEnvInt("TRAYPOP_ANIM_DURATION_MS"); ok && v >= 0 {
		cfg.AnimDurationMS = v
	}
	if v, ok := getEnvInt("TRAYPOP_FRAME_BUFFER"); ok && v > 0 {
		cfg.FrameBuffer = v
	}
	if v, ok := getEnvBool("TRAYPOP_START_HIDDEN"); ok {
		cfg.StartHidden = v
	}
	return cfg
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
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}
