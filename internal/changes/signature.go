package changes

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/crypto/openpgp"
	"golang.org/x/crypto/openpgp/clearsign"
)

// Signer identifies who signed a .changes file. ACL lookups key on the
// fingerprint; the name and email only appear in notices and logs.
type Signer struct {
	Name        string
	Email       string
	Fingerprint string
}

// LoadKeyring reads an armored (or binary, as a fallback) OpenPGP keyring
// of known uploader keys.
func LoadKeyring(path string) (openpgp.EntityList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(f)
	if err == nil {
		return keyring, nil
	}
	if _, serr := f.Seek(0, 0); serr != nil {
		return nil, serr
	}
	keyring, berr := openpgp.ReadKeyRing(f)
	if berr != nil {
		return nil, fmt.Errorf("read keyring %s: %w", path, err)
	}
	return keyring, nil
}

// VerifySignature checks a clearsigned .changes document against the
// keyring and returns the signer plus the signed plaintext.
//
// Unsigned input is not an error here: it comes back with a nil Signer and
// the original bytes, and the upload policy decides whether an unsigned
// pathway is legitimate. A signature by an unknown key or a corrupt
// signature is an error, because no identity can be trusted for ACL or
// notification purposes.
func VerifySignature(raw []byte, keyring openpgp.EntityList) (*Signer, []byte, error) {
	block, _ := clearsign.Decode(raw)
	if block == nil {
		return nil, raw, nil
	}

	entity, err := openpgp.CheckDetachedSignature(
		keyring, bytes.NewReader(block.Bytes), block.ArmoredSignature.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("signature verification failed: %w", err)
	}

	signer := &Signer{
		Fingerprint: fmt.Sprintf("%X", entity.PrimaryKey.Fingerprint[:]),
	}
	for _, identity := range entity.Identities {
		signer.Name = identity.UserId.Name
		signer.Email = identity.UserId.Email
		break
	}

	return signer, block.Plaintext, nil
}
