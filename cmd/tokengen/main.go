package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/syncup/syncup-go/internal/mockapi"
)

func main() {
	var (
		secret  = flag.String("secret", "your-256-bit-secret-key-min-32-bytes-here-for-demo!", "HS256 secret (minimum 32 bytes)")
		keyFile = flag.String("key", "", "PEM RSA private key; switches signing to RS256")
		subject = flag.String("sub", "testuser", "Subject (username)")
		ttl     = flag.Duration("ttl", time.Hour, "Token lifetime; negative values mint an already expired token")
		noIat   = flag.Bool("no-iat", false, "Omit the iat claim")
	)

	flag.Parse()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": *subject,
		"exp": now.Add(*ttl).Unix(),
	}
	if !*noIat {
		claims["iat"] = now.Unix()
	}

	var (
		tokenString string
		err         error
	)
	if *keyFile != "" {
		pemBytes, readErr := os.ReadFile(*keyFile)
		if readErr != nil {
			log.Fatalf("Failed to read key: %v", readErr)
		}
		key, parseErr := mockapi.ParseRSAPrivateKeyFromPEM(pemBytes)
		if parseErr != nil {
			log.Fatalf("Failed to parse key: %v", parseErr)
		}
		tokenString, err = jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	} else {
		if len(*secret) < 32 {
			log.Fatal("Secret must be at least 32 bytes")
		}
		tokenString, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	}
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println("\n=== Session Token Generated ===")
	fmt.Printf("\nToken: %s\n\n", tokenString)
	fmt.Println("Claims:")
	fmt.Printf("  Subject: %s\n", *subject)
	fmt.Printf("  Expires: %s\n\n", now.Add(*ttl).Format(time.RFC3339))
	fmt.Println("Usage:")
	fmt.Printf("  syncup token decode %s\n", tokenString)
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/list/all\n\n", tokenString)
}
