package chain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

const addressHexLen = 40

func keccak(data []byte) [32]byte {
	var out [32]byte
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	copy(out[:], hash.Sum(nil))
	return out
}

// IsAddress reports whether s is a 0x-prefixed 20-byte hex address.
func IsAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 2+addressHexLen {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// Checksum renders an address in EIP-55 mixed-case form.
func Checksum(address string) string {
	addr := strings.ToLower(strings.TrimPrefix(address, "0x"))
	hashed := keccak([]byte(addr))
	hexHash := hex.EncodeToString(hashed[:])

	out := []byte(addr)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && hexHash[i] >= '8' {
			out[i] = c - 32
		}
	}
	return "0x" + string(out)
}

// addressFromWord extracts the trailing 20 bytes of a 32-byte call result.
func addressFromWord(word string) (string, bool) {
	if len(word) != 2+64 {
		return "", false
	}
	addr := "0x" + word[len(word)-addressHexLen:]
	if !IsAddress(addr) {
		return "", false
	}
	return Checksum(addr), true
}
