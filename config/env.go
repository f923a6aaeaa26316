package config

import (
	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file into the process environment. A missing file is
// not an error: the real environment is used instead.
func LoadEnv(files ...string) {
	err := godotenv.Load(files...)

	if err != nil {
		Logger.Debug("No .env file loaded, using environment variables instead: ", err)
	}
}
