// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hdevalence/ed25519consensus"
	"github.com/stretchr/testify/require"

	oed25519 "github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
)

var (
	TestPrivateKey = PrivateKey(
		[PrivateKeyLen]byte{
			32, 241, 118, 222, 210, 13, 164, 128, 3, 18,
			109, 215, 176, 215, 168, 171, 194, 181, 4, 11,
			253, 199, 173, 240, 107, 148, 127, 190, 48, 164,
			12, 48, 115, 50, 124, 153, 59, 53, 196, 150, 168,
			143, 151, 235, 222, 128, 136, 161, 9, 40, 139, 85,
			182, 153, 68, 135, 62, 166, 45, 235, 251, 246, 69, 7,
		},
	)
	TestPublicKey = []byte{
		115, 50, 124, 153, 59, 53, 196, 150, 168, 143, 151, 235,
		222, 128, 136, 161, 9, 40, 139, 85, 182, 153, 68, 135,
		62, 166, 45, 235, 251, 246, 69, 7,
	}
	oed25519options = &oed25519.Options{
		Verify: oed25519.VerifyOptionsZIP_215,
	}
)

func TestGeneratePrivateKeyFormat(t *testing.T) {
	require := require.New(t)
	priv, err := GeneratePrivateKey()
	require.NoError(err, "Error Generating PrivateKey")
	require.NotEqual(priv, EmptyPrivateKey, "PrivateKey is empty")
	require.Len(priv, PrivateKeyLen, "PrivateKey has incorrect length")
}

func TestGeneratePrivateKeyDifferent(t *testing.T) {
	require := require.New(t)
	const numKeysToGenerate int = 10
	pks := [numKeysToGenerate]PrivateKey{}

	// generate keys
	for i := 0; i < numKeysToGenerate; i++ {
		priv, err := GeneratePrivateKey()
		pks[i] = priv
		require.NoError(err, "Error Generating Private Key")
	}

	// make sure keys are different
	m := make(map[PrivateKey]bool)
	for _, priv := range pks {
		require.False(m[priv], "Duplicate PrivateKey generated")
		m[priv] = true
	}
}

func TestPublicKeyValid(t *testing.T) {
	require := require.New(t)
	// Hardcoded test values
	var expectedPubKey PublicKey
	copy(expectedPubKey[:], TestPublicKey)
	pubKey := TestPrivateKey.PublicKey()
	require.Equal(expectedPubKey, pubKey, "PublicKey not equal to Expected PublicKey")
}

func TestPublicKeyFormat(t *testing.T) {
	require := require.New(t)
	priv, err := GeneratePrivateKey()
	require.NoError(err, "Error during call to GeneratePrivateKey")
	pubKey := priv.PublicKey()
	require.NotEqual(pubKey, EmptyPublicKey, "PublicKey is empty")
	require.Len(pubKey, PublicKeyLen, "PublicKey has incorrect length")
}

func TestSignSignatureValid(t *testing.T) {
	require := require.New(t)

	msg := []byte("msg")
	// Sign using ed25519
	ed25519Sign := ed25519.Sign(TestPrivateKey[:], msg)
	var expectedSig Signature
	copy(expectedSig[:], ed25519Sign)
	// Sign using crypto
	sig := Sign(msg, TestPrivateKey)
	require.Equal(expectedSig, sig, "Signature was incorrect")
}

func TestVerifyValidParams(t *testing.T) {
	require := require.New(t)
	msg := []byte("msg")
	sig := Sign(msg, TestPrivateKey)
	require.True(Verify(msg, TestPrivateKey.PublicKey(), sig),
		"Signature was invalid")
}

func TestVerifyInvalidParams(t *testing.T) {
	require := require.New(t)

	msg := []byte("msg")

	difMsg := []byte("diff msg")
	sig := Sign(msg, TestPrivateKey)

	require.False(Verify(difMsg, TestPrivateKey.PublicKey(), sig),
		"Verify incorrectly verified a message")
}

func TestPublicKeyText(t *testing.T) {
	require := require.New(t)

	pub := TestPrivateKey.PublicKey()
	s := pub.String()
	require.True(strings.HasPrefix(s, CurvePrefix))

	parsed, err := ParsePublicKey(s)
	require.NoError(err)
	require.Equal(pub, parsed)

	// the curve prefix is optional
	parsed, err = ParsePublicKey(strings.TrimPrefix(s, CurvePrefix))
	require.NoError(err)
	require.Equal(pub, parsed)

	_, err = ParsePublicKey("secp256k1:" + strings.TrimPrefix(s, CurvePrefix))
	require.ErrorIs(err, ErrUnknownCurve)

	_, err = ParsePublicKey("ed25519:abc")
	require.ErrorIs(err, ErrInvalidPublicKey)
}

func TestKeysJSON(t *testing.T) {
	require := require.New(t)

	type keys struct {
		Public    PublicKey  `json:"public"`
		Private   PrivateKey `json:"private"`
		Signature Signature  `json:"signature"`
	}
	in := keys{
		Public:    TestPrivateKey.PublicKey(),
		Private:   TestPrivateKey,
		Signature: Sign([]byte("linkdrop"), TestPrivateKey),
	}
	b, err := json.Marshal(in)
	require.NoError(err)

	var out keys
	require.NoError(json.Unmarshal(b, &out))
	require.Equal(in, out)
}

func TestVerifyMatchesZIP215Reference(t *testing.T) {
	require := require.New(t)

	for i := 0; i < 16; i++ {
		msg := make([]byte, 128)
		_, err := rand.Read(msg)
		require.NoError(err)
		priv, err := GeneratePrivateKey()
		require.NoError(err)
		sig := Sign(msg, priv)
		pub := priv.PublicKey()

		require.True(Verify(msg, pub, sig))
		require.True(oed25519.VerifyWithOptions(pub[:], msg, sig[:], oed25519options))
		require.True(ed25519consensus.Verify(pub[:], msg, sig[:]))
	}
}

func BenchmarkVerifySingle(b *testing.B) {
	require := require.New(b)
	b.StopTimer()
	msg := make([]byte, 128)
	_, err := rand.Read(msg)
	require.NoError(err)
	priv, err := GeneratePrivateKey()
	require.NoError(err)
	sig := Sign(msg, priv)
	pub := priv.PublicKey()
	b.StartTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		require.True(Verify(msg, pub, sig), "invalid signature")
	}
}
