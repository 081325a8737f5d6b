package initializers

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvVariables reads .env into the process environment. Missing files
// are fine in deployed environments where variables come from the host.
func LoadEnvVariables() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Println("Error loading .env file:", err)
		}
	}
}
