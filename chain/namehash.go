package chain

import "strings"

// Namehash computes the EIP-137 node of an ENS name: the empty name is the
// zero node, and each label folds in right to left as
// keccak(node ++ keccak(label)).
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak([]byte(labels[i]))
		node = keccak(append(node[:], label[:]...))
	}
	return node
}
