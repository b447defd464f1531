// utils/safelog.go
// ============================================================================
// SAFE LOGGING - Masque les données sensibles en production
// ============================================================================

package utils

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
)

var (
	// IsProduction détermine si on est en mode production
	// En production, les données personnelles et financières sont masquées
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		os.Getenv("ENVIRONMENT") == "production" ||
		os.Getenv("ENV") == "production"

	LogLevel = getLogLevel()
)

const (
	LogLevelDebug = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func getLogLevel() int {
	level := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	switch level {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	amountWithCurrencyRegex = regexp.MustCompile(`\b\d+([.,]\d{1,2})?\s*(€|EUR|CHF|GBP|USD|£|\$)\b`)

	// Pattern pour SIRET (14 chiffres)
	siretRegex = regexp.MustCompile(`\b\d{14}\b`)

	uuidRegex = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// MaskString masque les données sensibles dans une chaîne
func MaskString(input string) string {
	if !IsProduction {
		return input
	}

	result := input
	result = emailRegex.ReplaceAllString(result, "***@***.***")
	result = siretRegex.ReplaceAllString(result, "****SIRET****")
	result = amountWithCurrencyRegex.ReplaceAllString(result, "***€")
	result = uuidRegex.ReplaceAllStringFunc(result, func(id string) string {
		if len(id) > 8 {
			return id[:8] + "..."
		}
		return "***"
	})

	return result
}

// MaskAmount masque un montant financier
func MaskAmount(amount float64) string {
	if IsProduction {
		return "***"
	}
	return fmt.Sprintf("%.2f", amount)
}

// MaskID masque partiellement un ID (garde les 8 premiers caractères)
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

// MaskEmail masque un email
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// SafeLog log un message en masquant les données sensibles
func SafeLog(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Print(MaskString(message))
}

// SafeError log un message d'erreur
func SafeError(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Printf("[ERROR] %s", MaskString(message))
}

// LogAuthAction log une action d'authentification
func LogAuthAction(action string, email string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	log.Printf("[Auth] %s - Email: %s Status: %s", action, MaskEmail(email), status)
}

// LogDocumentAction log une action sur un document (facture, devis) sans
// exposer les montants
func LogDocumentAction(action string, documentNumber string, userID string) {
	log.Printf("[Doc] %s - Number: %s User: %s", action, documentNumber, MaskID(userID))
}

// LogAPIRequest log une requête API (sans données sensibles dans le body)
func LogAPIRequest(method string, path string, userID string, statusCode int, duration string) {
	if IsProduction {
		maskedPath := uuidRegex.ReplaceAllStringFunc(path, func(id string) string {
			if len(id) > 8 {
				return id[:8] + "..."
			}
			return "***"
		})
		log.Printf("[API] %s %s - User: %s Status: %d Duration: %s",
			method, maskedPath, MaskID(userID), statusCode, duration)
	} else {
		log.Printf("[API] %s %s - User: %s Status: %d Duration: %s",
			method, path, userID, statusCode, duration)
	}
}
