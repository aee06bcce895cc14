package keyring

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/creachadair/atomicfile"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/webauth"
	"github.com/opd-ai/webauth/attrs"
	"github.com/opd-ai/webauth/crypto"
)

// ringVersion is the keyring file format version this package reads and
// writes.
const ringVersion = 1

// ringFile is the on-disk layout: a format version, an entry count, and
// one index-suffixed group per entry.
type ringFile struct {
	Version uint32      `attr:"v"`
	Entries []ringEntry `attr:"n"`
}

type ringEntry struct {
	Creation   int64  `attr:"ct"`
	ValidAfter int64  `attr:"va"`
	KeyType    uint32 `attr:"kt"`
	KeyData    []byte `attr:"kd"`
}

// Encode serializes the keyring to its file format.
func (r *Keyring) Encode() ([]byte, error) {
	data := ringFile{
		Version: ringVersion,
		Entries: make([]ringEntry, 0, len(r.entries)),
	}
	for _, entry := range r.entries {
		data.Entries = append(data.Entries, ringEntry{
			Creation:   entry.Creation,
			ValidAfter: entry.ValidAfter,
			KeyType:    uint32(entry.Key.Type()),
			KeyData:    entry.Key.Material(),
		})
	}
	return attrs.Marshal(&data)
}

// Decode parses the file format back into a keyring. Every entry must
// carry a valid key; a corrupt entry aborts the whole decode.
func Decode(input []byte) (*Keyring, error) {
	var data ringFile
	if err := attrs.Unmarshal(input, &data); err != nil {
		return nil, err
	}
	if data.Version != ringVersion {
		return nil, webauth.New(webauth.CodeFileVersion,
			"unsupported keyring data version %d", data.Version)
	}
	ring := New(len(data.Entries))
	for i, entry := range data.Entries {
		key, err := crypto.NewKey(crypto.KeyType(entry.KeyType), entry.KeyData)
		if err != nil {
			return nil, webauth.Wrap(err, webauth.CodeCorrupt,
				"invalid key in keyring entry %d", i)
		}
		ring.Add(entry.Creation, entry.ValidAfter, key)
	}
	return ring, nil
}

// Read loads and decodes a keyring file.
func Read(path string) (*Keyring, error) {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Read",
		"package":  "keyring",
		"path":     path,
	})

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, webauth.Wrap(err, webauth.CodeFileNotFound,
				"keyring %s does not exist", path)
		}
		logger.WithField("error", err.Error()).Error("cannot open keyring")
		return nil, webauth.Wrap(err, webauth.CodeFileOpenRead,
			"opening keyring %s", path)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		logger.WithField("error", err.Error()).Error("cannot read keyring")
		return nil, webauth.Wrap(err, webauth.CodeFileRead,
			"reading keyring %s", path)
	}
	ring, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	logger.WithField("entries", ring.Len()).Debug("keyring loaded")
	return ring, nil
}

// Write serializes the keyring and atomically replaces the file at path.
// The data is first written to a temporary file in the same directory,
// which is renamed onto the target on success and removed on failure, so
// readers observe either the old ring or the new one.
func (r *Keyring) Write(path string) error {
	logger := logrus.WithFields(logrus.Fields{
		"function": "Write",
		"package":  "keyring",
		"path":     path,
		"entries":  r.Len(),
	})

	buf, err := r.Encode()
	if err != nil {
		return err
	}
	if err := atomicfile.WriteData(path, buf, 0600); err != nil {
		logger.WithField("error", err.Error()).Error("cannot write keyring")
		code := webauth.CodeFileWrite
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			code = webauth.CodeFileOpenWrite
		}
		return webauth.Wrap(err, code, "writing keyring %s", path)
	}
	logger.Debug("keyring written")
	return nil
}
