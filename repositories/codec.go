package repositories

import "github.com/vmihailenco/msgpack"

func encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func decode(data []byte, dest any) error {
	return msgpack.Unmarshal(data, dest)
}
