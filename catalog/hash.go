package catalog

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"strings"
)

// HashType selects the content hash algorithm used to identify roms.
type HashType string

const (
	HashCRC  HashType = "crc"
	HashMD5  HashType = "md5"
	HashSHA1 HashType = "sha1"
)

// HashTypes lists the supported algorithms in display order.
var HashTypes = []HashType{HashCRC, HashMD5, HashSHA1}

// ParseHashType is case-insensitive and accepts "crc32" as an alias for crc.
func ParseHashType(s string) (HashType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crc", "crc32":
		return HashCRC, nil
	case "md5":
		return HashMD5, nil
	case "sha1":
		return HashSHA1, nil
	default:
		return "", fmt.Errorf("unknown hash method %q (want crc, md5 or sha1)", s)
	}
}

func (t HashType) String() string {
	return string(t)
}

// New returns a fresh hasher for the algorithm.
func (t HashType) New() (hash.Hash, error) {
	switch t {
	case HashCRC:
		return crc32.NewIEEE(), nil
	case HashMD5:
		return md5.New(), nil
	case HashSHA1:
		return sha1.New(), nil
	default:
		return nil, fmt.Errorf("unknown hash method %q", string(t))
	}
}

// HashReader hashes the whole stream and returns the lowercase hex digest.
// CRC32 digests are the 8 hex digits of the big-endian checksum.
func HashReader(r io.Reader, t HashType) (string, error) {
	h, err := t.New()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("%w: hash content: %v", ErrIO, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
