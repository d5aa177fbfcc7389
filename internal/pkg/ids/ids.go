package ids

import (
	"crypto/rand"
	"math/big"
)

const (
	membershipIDPrefix = "BN-"
	membershipIDLength = 8
	referralCodeLength = 8
	alphabet           = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// MembershipID returns a new candidate membership ID, e.g. "BN-7K2Q9XA4".
// Uniqueness is enforced by the caller (duplicate check plus retry).
func MembershipID() string {
	return membershipIDPrefix + randomString(membershipIDLength)
}

// ReferralCode returns a new candidate referral code. Uniqueness is
// enforced by the caller.
func ReferralCode() string {
	return randomString(referralCodeLength)
}

func randomString(n int) string {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b)
}
