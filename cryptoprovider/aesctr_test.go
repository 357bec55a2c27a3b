package cryptoprovider

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAESCTRHMACRoundTrip(t *testing.T) {
	k := []byte("shared-secret-material-from-kex")
	h := defaultExchangeHash([]byte("exchange-hash-input"))

	client, err := NewAESCTRHMAC(k, h, h)
	require.NoError(t, err)
	server, err := NewAESCTRHMAC(k, h, h)
	require.NoError(t, err)

	frame := []byte{0, 0, 0, 12, 11, 0x05, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	ciphertext, mac, err := client.EncryptPacket(frame, 0)
	require.NoError(t, err)
	require.Len(t, mac, int(client.MacOutLen()))

	plaintext, err := server.DecryptPacket(ciphertext, server.DecryptBlockSize())
	require.NoError(t, err)

	// server's decrypt context mirrors client's encrypt context because both
	// were derived from the same (k, h, sessionID) inputs with the same
	// letter assignment
	expectedMac := server.ComputeMac(plaintext, 0)
	require.Equal(t, expectedMac, mac)
}

func TestAESCBCHMACRoundTrip(t *testing.T) {
	k := []byte("another-shared-secret")
	h := defaultExchangeHash([]byte("another-exchange-hash"))

	client, err := NewAESCBCHMAC(k, h, h)
	require.NoError(t, err)
	server, err := NewAESCBCHMAC(k, h, h)
	require.NoError(t, err)

	require.EqualValues(t, 20, client.MacOutLen())

	frame := make([]byte, 32)
	frame[3] = 32
	ciphertext, mac, err := client.EncryptPacket(frame, 0)
	require.NoError(t, err)

	plaintext, err := server.DecryptPacket(ciphertext, server.DecryptBlockSize())
	require.NoError(t, err)
	require.Equal(t, frame, plaintext)

	require.Equal(t, server.ComputeMac(plaintext, 0), mac)
}

func TestPreferencesPreservesOrderAndDedupes(t *testing.T) {
	p := NewPreferences()
	p.Set(CipherClientServer, "aes128-ctr", "aes128-cbc", "aes128-ctr")

	require.Equal(t, []string{"aes128-ctr", "aes128-cbc"}, p.Get(CipherClientServer))
	require.Nil(t, p.Get(HostKeyAlgorithms))
}
