package identity

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/btcec"
	"golang.org/x/crypto/sha3"
)

// used to reject malleable signatures, btcec does not check it on verify
var (
	secp256k1N, _  = new(big.Int).SetString("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)
	secp256k1halfN = new(big.Int).Div(secp256k1N, big.NewInt(2))
)

const signatureLen = 64

// Credential is the durable identity of this process: a secp256k1 keypair plus
// the remote storage identity it was assigned. Endpoints maps endpoint names to
// the identity each endpoint issued, when they differ from the primary one.
type Credential struct {
	privKey   *btcec.PrivateKey
	Identity  string
	Endpoints map[string]string
	CreatedAt time.Time
}

type credentialJSON struct {
	PrivateKey string            `json:"privateKey"`
	PubKey     string            `json:"pubKey"`
	UUID       string            `json:"uuid,omitempty"`
	Endpoints  map[string]string `json:"endpoints,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// Generate creates a credential with a fresh keypair and no remote identity.
func Generate() (*Credential, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &Credential{
		privKey:   priv,
		Endpoints: make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// FromPrivateKeyHex rebuilds a credential from a hex encoded private key.
func FromPrivateKeyHex(privHex string) (*Credential, error) {
	b, err := hex.DecodeString(privHex)
	if err != nil || len(b) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("private key: %w", ErrInvalidKey)
	}
	priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), b)
	return &Credential{
		privKey:   priv,
		Endpoints: make(map[string]string),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// PublicKey returns the compressed public key, hex encoded.
func (c *Credential) PublicKey() string {
	return hex.EncodeToString(c.privKey.PubKey().SerializeCompressed())
}

// PrivateKeyHex returns the raw private key, hex encoded.
func (c *Credential) PrivateKeyHex() string {
	return hex.EncodeToString(c.privKey.Serialize())
}

// HasIdentity reports whether a remote identity was already assigned.
func (c *Credential) HasIdentity() bool {
	return c.Identity != ""
}

// EndpointIdentity returns the identity an endpoint issued, falling back to the primary one.
func (c *Credential) EndpointIdentity(endpoint string) string {
	if id, ok := c.Endpoints[endpoint]; ok && id != "" {
		return id
	}
	return c.Identity
}

// Sign signs keccak256(message) and returns r||s hex encoded.
func (c *Credential) Sign(message string) (string, error) {
	sig, err := c.privKey.Sign(hashMessage(message))
	if err != nil {
		return "", fmt.Errorf("sign: %w", err)
	}
	rBytes := sig.R.Bytes()
	sBytes := sig.S.Bytes()
	out := make([]byte, signatureLen)
	// left pad r and s to 32 bytes each
	copy(out[32-len(rBytes):32], rBytes)
	copy(out[64-len(sBytes):64], sBytes)
	return hex.EncodeToString(out), nil
}

// Verify checks a hex r||s signature over message against a hex compressed public key.
func Verify(signatureHex, message, pubKeyHex string) bool {
	sigBytes, err := hex.DecodeString(signatureHex)
	if err != nil || len(sigBytes) != signatureLen {
		return false
	}
	pubBytes, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false
	}
	pub, err := btcec.ParsePubKey(pubBytes, btcec.S256())
	if err != nil {
		return false
	}

	sig := &btcec.Signature{
		R: new(big.Int).SetBytes(sigBytes[:32]),
		S: new(big.Int).SetBytes(sigBytes[32:]),
	}
	if sig.S.Cmp(secp256k1halfN) > 0 {
		return false
	}
	return sig.Verify(hashMessage(message), pub)
}

func hashMessage(message string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(message))
	return h.Sum(nil)
}

func (c *Credential) MarshalJSON() ([]byte, error) {
	return json.Marshal(credentialJSON{
		PrivateKey: c.PrivateKeyHex(),
		PubKey:     c.PublicKey(),
		UUID:       c.Identity,
		Endpoints:  c.Endpoints,
		CreatedAt:  c.CreatedAt,
	})
}

func (c *Credential) UnmarshalJSON(data []byte) error {
	var raw credentialJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := FromPrivateKeyHex(raw.PrivateKey)
	if err != nil {
		return err
	}
	if raw.PubKey != "" && raw.PubKey != parsed.PublicKey() {
		return fmt.Errorf("public key does not match private key: %w", ErrInvalidKey)
	}

	c.privKey = parsed.privKey
	c.Identity = raw.UUID
	c.Endpoints = raw.Endpoints
	if c.Endpoints == nil {
		c.Endpoints = make(map[string]string)
	}
	c.CreatedAt = raw.CreatedAt
	return nil
}
