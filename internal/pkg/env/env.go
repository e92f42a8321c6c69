package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var Env map[string]string

func GetEnv(key, def string) string {
	// First check our loaded Env map
	if val, ok := Env[key]; ok {
		return val
	}
	// Fallback to OS environment variables (for Docker/tests)
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt reads an integer setting, falling back to def on missing or
// unparseable values.
func GetEnvInt(key string, def int) int {
	raw := GetEnv(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func SetupEnvFile() {
	// Look for .env file in project root
	envFiles := []string{
		".env",          // Current directory
		"../../.env",    // From cmd/tablo to project root
		"../../../.env", // Fallback for deeper nesting
	}

	var err error
	for _, envFile := range envFiles {
		Env, err = godotenv.Read(envFile)
		if err == nil {
			// Successfully loaded env file
			return
		}
	}

	// Containers configure everything through the OS environment, so a
	// missing .env file is not fatal.
	log.Println("No .env file found, relying on OS environment")
	Env = map[string]string{}
}

func IsDev() bool {
	return GetEnv("APP_ENV", "prod") == "dev"
}
