package vault

import (
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardcorebadger/push-api/internal/models"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	var key fernet.Key
	require.NoError(t, key.Generate())
	v, err := New(key.Encode())
	require.NoError(t, err)
	return v
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	v := newTestVault(t)

	apnsCipher, err := v.Encrypt("apns-p8-key")
	require.NoError(t, err)
	fcmCipher, err := v.Encrypt(`{"project_id":"x"}`)
	require.NoError(t, err)
	vapidCipher, err := v.Encrypt("vapid-priv")
	require.NoError(t, err)

	assert.NotEqual(t, "apns-p8-key", apnsCipher)

	project := &models.Project{
		ID:                 "p1",
		APNSKeyID:          "kid",
		APNSTeamID:         "tid",
		APNSBundleID:       "com.example",
		APNSPrivateKey:     apnsCipher,
		FCMCredentialsJSON: fcmCipher,
		VAPIDPublicKey:     "pub",
		VAPIDPrivateKey:    vapidCipher,
		VAPIDSubject:       "mailto:a@b.c",
	}

	creds, err := v.Decrypt(project)
	require.NoError(t, err)
	assert.Equal(t, "apns-p8-key", creds.APNSPrivateKey)
	assert.Equal(t, `{"project_id":"x"}`, creds.FCMCredentialsJSON)
	assert.Equal(t, "vapid-priv", creds.VAPIDPrivateKey)
	assert.Equal(t, "kid", creds.APNSKeyID)
	assert.Equal(t, "pub", creds.VAPIDPublicKey)
}

func TestDecryptAbsentFieldsStayEmpty(t *testing.T) {
	v := newTestVault(t)

	creds, err := v.Decrypt(&models.Project{ID: "p1", APNSKeyID: "kid"})
	require.NoError(t, err)
	assert.Empty(t, creds.APNSPrivateKey)
	assert.Empty(t, creds.FCMCredentialsJSON)
	assert.Empty(t, creds.VAPIDPrivateKey)
}

func TestDecryptWithoutMasterKey(t *testing.T) {
	v, err := New("")
	require.NoError(t, err)

	_, err = v.Decrypt(&models.Project{ID: "p1"})
	var decryptErr *DecryptionError
	require.ErrorAs(t, err, &decryptErr)

	_, err = v.Encrypt("secret")
	require.ErrorAs(t, err, &decryptErr)
}

func TestDecryptCorruptCiphertext(t *testing.T) {
	v := newTestVault(t)

	_, err := v.Decrypt(&models.Project{ID: "p1", APNSPrivateKey: "garbage"})
	var decryptErr *DecryptionError
	require.ErrorAs(t, err, &decryptErr)
	assert.Equal(t, "apns_private_key", decryptErr.Field)
}

func TestDecryptWrongKey(t *testing.T) {
	other := newTestVault(t)
	cipher, err := other.Encrypt("secret")
	require.NoError(t, err)

	v := newTestVault(t)
	_, err = v.Decrypt(&models.Project{ID: "p1", VAPIDPrivateKey: cipher})
	var decryptErr *DecryptionError
	require.ErrorAs(t, err, &decryptErr)
	assert.Equal(t, "vapid_private_key", decryptErr.Field)
}

func TestNewRejectsMalformedKey(t *testing.T) {
	_, err := New("not base64!!!")
	require.Error(t, err)
}
