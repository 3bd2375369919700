package llm

import "os"

// credentialEnv maps provider names to the environment variable holding
// their API key. Providers absent from the map (local servers) need none.
var credentialEnv = map[string]string{
	"groq":   "GROQ_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// CredentialEnv returns the name of the environment variable that holds
// the credential for a provider, or "" when the provider needs none.
func CredentialEnv(provider string) string {
	return credentialEnv[provider]
}

// CheckCredential reports whether the provider's credential is present.
// Surfaces call this before attempting a request so a missing key is a
// precondition failure, not a generation failure.
func CheckCredential(provider string) (envName string, ok bool) {
	envName = CredentialEnv(provider)
	if envName == "" {
		return "", true
	}
	return envName, os.Getenv(envName) != ""
}
