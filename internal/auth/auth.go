// Package auth resolves provider API keys from the environment and the OS
// keychain.
package auth

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const serviceName = "codepix"

// Sources reported by Resolve.
const (
	SourceEnv      = "Environment Variable"
	SourceKeychain = "Keychain"
)

type account struct {
	keychain string
	envVar   string
}

var accounts = map[string]account{
	"gemini": {keychain: "gemini-api-key", envVar: "GEMINI_API_KEY"},
	"groq":   {keychain: "groq-api-key", envVar: "GROQ_API_KEY"},
}

// Keychain access, replaceable in tests.
var (
	keyringGet    = keyring.Get
	keyringSet    = keyring.Set
	keyringDelete = keyring.Delete
)

// Services lists the services that can hold a key.
func Services() []string {
	return []string{"gemini", "groq"}
}

func lookup(service string) (account, error) {
	acc, ok := accounts[strings.ToLower(strings.TrimSpace(service))]
	if !ok {
		return account{}, fmt.Errorf("unknown service %q (supported: gemini, groq)", service)
	}
	return acc, nil
}

// EnvVar returns the environment variable that carries the service's key.
func EnvVar(service string) string {
	acc, err := lookup(service)
	if err != nil {
		return ""
	}
	return acc.envVar
}

// Resolve returns the key for a service and where it came from. The
// environment wins; the keychain is consulted only when allowKeychain is set.
func Resolve(service string, allowKeychain bool) (string, string) {
	acc, err := lookup(service)
	if err != nil {
		return "", ""
	}
	if key := strings.TrimSpace(os.Getenv(acc.envVar)); key != "" {
		return key, SourceEnv
	}
	if !allowKeychain {
		return "", ""
	}
	key, err := keyringGet(serviceName, acc.keychain)
	if err == nil && strings.TrimSpace(key) != "" {
		return strings.TrimSpace(key), SourceKeychain
	}
	return "", ""
}

// SaveKey saves the key for a service to the OS keychain.
func SaveKey(service, key string) error {
	acc, err := lookup(service)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key cannot be empty")
	}
	return keyringSet(serviceName, acc.keychain, key)
}

// DeleteKey removes the key for a service from the OS keychain.
func DeleteKey(service string) error {
	acc, err := lookup(service)
	if err != nil {
		return err
	}
	return keyringDelete(serviceName, acc.keychain)
}

// GetStatus reports whether a key is stored in the keychain for the service.
func GetStatus(service string) bool {
	acc, err := lookup(service)
	if err != nil {
		return false
	}
	key, err := keyringGet(serviceName, acc.keychain)
	return err == nil && key != ""
}

// PromptForAPIKey securely prompts the user for their API key.
func PromptForAPIKey(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}
