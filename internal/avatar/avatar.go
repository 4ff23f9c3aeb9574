// Package avatar resolves and stores user profile images.
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
)

const gravatarBase = "https://www.gravatar.com/avatar/"

// KeyPrefix namespaces avatar objects in the bucket.
const KeyPrefix = "ContactsApp/"

// GravatarURL returns the Gravatar image URL for email, or "" for an empty
// address.
func GravatarURL(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := md5.Sum([]byte(email))
	return gravatarBase + hex.EncodeToString(sum[:])
}

// ObjectKey returns the storage key of the avatar of user id. Uploads for the
// same user overwrite each other.
func ObjectKey(userID int64) string {
	return KeyPrefix + strconv.FormatInt(userID, 10)
}
