package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yourusername/ququiz-api/pkg/auth"
)

// Утилита выпуска токенов ведущих. Регистрации ведущих в API нет:
// токен выдается оператором и передается ведущему вручную.
func main() {
	hostID := flag.Uint("host", 0, "ID ведущего, для которого выпускается токен")
	hours := flag.Int("hours", 24, "Срок жизни токена в часах")
	flag.Parse()

	if *hostID == 0 {
		fmt.Fprintln(os.Stderr, "Usage: hosttoken -host <id> [-hours <n>]")
		os.Exit(2)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT_SECRET_KEY environment variable is required")
	}

	jwtService, err := auth.NewJWTService(secret, *hours)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	token, err := jwtService.GenerateToken(*hostID)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
