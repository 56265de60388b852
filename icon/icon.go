// Package icon holds the fallback avatar images and the fingerprinting
// used to decide whether an avatar change is needed at all.
package icon

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	_ "embed"
)

//go:embed img/default.png
var defaultPNG []byte

//go:embed img/offline.png
var offlinePNG []byte

// Default returns the avatar used when the server is online but provides
// no favicon of its own.
func Default() string {
	return DataURI(defaultPNG)
}

// Offline returns the avatar used when the server is offline or unreachable.
func Offline() string {
	return DataURI(offlinePNG)
}

// DataURI encodes PNG bytes as a data URI suitable for the Discord
// avatar endpoint.
func DataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// FingerprintBytes returns the identity of an image payload. Two images
// with the same fingerprint are treated as the same avatar.
func FingerprintBytes(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns the identity of a data-URI image. The base64
// payload is decoded first so that the fingerprint matches the one
// computed from raw bytes fetched back from the sink. A URI that does
// not parse is fingerprinted as-is rather than dropped.
func Fingerprint(dataURI string) string {
	if dataURI == "" {
		return ""
	}
	if i := strings.IndexByte(dataURI, ','); i >= 0 {
		if raw, err := base64.StdEncoding.DecodeString(dataURI[i+1:]); err == nil {
			return FingerprintBytes(raw)
		}
	}
	return FingerprintBytes([]byte(dataURI))
}
