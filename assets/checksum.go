package assets

import (
	"crypto"
	_ "crypto/sha1"
	"os"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/holmhub/create-mcprofile/assets/logger"
)

// SHA1 is the digest algorithm used by game asset manifests.
var SHA1 = digest.Algorithm("sha1")

func init() {
	digest.RegisterAlgorithm(SHA1, crypto.SHA1)
}

// VerifyFile reports whether the file at path hashes to expectedHash, a
// SHA-1 hex string compared case-insensitively. A missing or unreadable
// file returns false rather than an error: that is the routine "needs
// download" signal, not a fault.
func VerifyFile(expectedHash, path string) bool {
	f, err := os.Open(path)
	if err != nil {
		logger.Debug("checksum: cannot open %s: %v", path, err)
		return false
	}
	defer f.Close()

	dgst, err := SHA1.FromReader(f)
	if err != nil {
		logger.Debug("checksum: cannot hash %s: %v", path, err)
		return false
	}

	return strings.EqualFold(dgst.Encoded(), expectedHash)
}
