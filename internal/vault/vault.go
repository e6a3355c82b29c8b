// Package vault encrypts and decrypts per-project platform credentials at
// rest. Ciphertexts are Fernet tokens, so rows written by earlier deployments
// of the gateway remain readable.
package vault

import (
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/hardcorebadger/push-api/internal/models"
)

// DecryptionError reports a vault misconfiguration or an undecryptable
// field. It aborts the whole dispatch before any job is built.
type DecryptionError struct {
	Field string
	Cause error
}

func (e *DecryptionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("vault: %v", e.Cause)
	}
	return fmt.Sprintf("vault: decrypt %s: %v", e.Field, e.Cause)
}

func (e *DecryptionError) Unwrap() error { return e.Cause }

// Credentials is the decrypted credential bundle for one project. It lives
// in a local scope per dispatch call and is never cached or logged.
type Credentials struct {
	APNSKeyID      string
	APNSTeamID     string
	APNSBundleID   string
	APNSPrivateKey string

	FCMCredentialsJSON string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
}

// Vault wraps the master key. A zero Vault (no key) fails every operation.
type Vault struct {
	keys []*fernet.Key
}

// New parses the base64 master key. An empty key yields a vault whose
// operations fail with DecryptionError, so a misconfigured deployment is
// caught on first use rather than at startup.
func New(masterKey string) (*Vault, error) {
	if masterKey == "" {
		return &Vault{}, nil
	}
	keys, err := fernet.DecodeKeys(masterKey)
	if err != nil {
		return nil, fmt.Errorf("vault: decode master key: %w", err)
	}
	return &Vault{keys: keys}, nil
}

// Encrypt produces a Fernet token for one sensitive credential field.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if len(v.keys) == 0 {
		return "", &DecryptionError{Cause: errNoKey}
	}
	tok, err := fernet.EncryptAndSign([]byte(plaintext), v.keys[0])
	if err != nil {
		return "", fmt.Errorf("vault: encrypt: %w", err)
	}
	return string(tok), nil
}

// Decrypt resolves the full decrypted credential bundle for a project.
// Called at most once per dispatch; the result is shared read-only across
// every job derived from that dispatch.
func (v *Vault) Decrypt(project *models.Project) (*Credentials, error) {
	if len(v.keys) == 0 {
		return nil, &DecryptionError{Cause: errNoKey}
	}

	creds := &Credentials{
		APNSKeyID:      project.APNSKeyID,
		APNSTeamID:     project.APNSTeamID,
		APNSBundleID:   project.APNSBundleID,
		VAPIDPublicKey: project.VAPIDPublicKey,
		VAPIDSubject:   project.VAPIDSubject,
	}

	var err error
	if creds.APNSPrivateKey, err = v.decryptField("apns_private_key", project.APNSPrivateKey); err != nil {
		return nil, err
	}
	if creds.FCMCredentialsJSON, err = v.decryptField("fcm_credentials_json", project.FCMCredentialsJSON); err != nil {
		return nil, err
	}
	if creds.VAPIDPrivateKey, err = v.decryptField("vapid_private_key", project.VAPIDPrivateKey); err != nil {
		return nil, err
	}
	return creds, nil
}

func (v *Vault) decryptField(field, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	plain := fernet.VerifyAndDecrypt([]byte(ciphertext), 0, v.keys)
	if plain == nil {
		return "", &DecryptionError{Field: field, Cause: errBadCiphertext}
	}
	return string(plain), nil
}

var (
	errNoKey         = fmt.Errorf("encryption key not configured")
	errBadCiphertext = fmt.Errorf("ciphertext invalid for configured key")
)
