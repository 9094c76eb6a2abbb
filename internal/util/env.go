package util

import (
	"os"
	"strconv"
	"strings"

	"github.com/alterfero/dig4el-sub001/pkg/logger"
	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file from the working directory when one exists.
// Variables already set in the process environment win.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("[Env] No .env file, using process environment")
	}
}

// GetEnv returns the variable or "" when unset.
func GetEnv(key string) string {
	return GetEnvString(key, "")
}

// GetEnvString returns the trimmed variable, or fallback when unset or blank.
func GetEnvString(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

// GetEnvBool accepts anything strconv.ParseBool does; other values yield fallback.
func GetEnvBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(GetEnv(key))
	if err != nil {
		return fallback
	}
	return b
}
