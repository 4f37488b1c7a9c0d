package ocr

import (
	"os"

	"google.golang.org/api/option"
)

// credentialOptions returns the client options for the credentials found in
// the environment. An empty result means Application Default Credentials.
func credentialOptions() []option.ClientOption {
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credJSON))}
	}
	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		return []option.ClientOption{option.WithCredentialsFile(credFile)}
	}
	return nil
}

// HasCredentials reports whether explicit credentials are configured.
func HasCredentials() bool {
	return len(credentialOptions()) > 0
}
